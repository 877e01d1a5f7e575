package menu

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t testing.TB, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// march4 is the DateContext of Monday, March 4 2024.
func march4() DateContext {
	return NewDateContext(time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC))
}
