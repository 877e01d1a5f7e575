package menu

import (
	"errors"
	"fmt"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

const (
	report_locator_locate = "locator.locate"
)

// ErrResolutionMiss is wrapped by every error Locate returns, the category is skipped for
// the run but other categories are still resolved.
var ErrResolutionMiss = errors.New("menu resolution miss")

// Locator resolves weekly menu ids from the menu listing page.
type Locator struct {
	tel telemetry.API
}

func NewLocator(tel telemetry.API) Locator {
	assert.NotNil(tel)
	return Locator{tel: tel}
}

// ExpectedLabel is the listing entry text the category's menu for this week starts with.
func ExpectedLabel(category Category, dc DateContext) string {
	return fmt.Sprintf("%s - %s", category.Label, dc.FormattedMonthDay)
}

// Locate finds the first `span.title` (in document order) whose normalized text starts with
// the category's expected label and reads the menu id from its enclosing `div.menu`.
func (l Locator) Locate(doc *goquery.Document, category Category, dc DateContext) (ResolvedMenu, error) {
	expected := ExpectedLabel(category, dc)

	var span *goquery.Selection
	doc.Find("span.title").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if textutil.HasNormalizedPrefix(s.Text(), expected) {
			span = s
			return false
		}
		return true
	})
	if span == nil {
		closest, score := closestTitle(doc, expected)
		l.tel.ReportWarning(
			report_locator_locate,
			fmt.Errorf("no listing entry starts with %q", expected),
			category.Name,
			fmt.Sprintf("closest: %q (%.2f)", closest, score),
		)
		return ResolvedMenu{}, fmt.Errorf("%w: no listing entry starts with %q", ErrResolutionMiss, expected)
	}

	container := span.Closest("div.menu")
	if container.Length() == 0 {
		l.tel.ReportWarning(report_locator_locate, fmt.Errorf("entry %q has no menu container", expected), category.Name)
		return ResolvedMenu{}, fmt.Errorf("%w: entry %q has no menu container", ErrResolutionMiss, expected)
	}

	id, ok := container.Attr("id")
	if !ok {
		l.tel.ReportWarning(report_locator_locate, fmt.Errorf("menu container of %q has no id", expected), category.Name)
		return ResolvedMenu{}, fmt.Errorf("%w: menu container of %q has no id", ErrResolutionMiss, expected)
	}
	numericId := textutil.FirstDigits(id)
	if numericId == "" {
		l.tel.ReportWarning(report_locator_locate, fmt.Errorf("menu container id %q has no digits", id), category.Name)
		return ResolvedMenu{}, fmt.Errorf("%w: menu container id %q has no digits", ErrResolutionMiss, id)
	}

	l.tel.ReportDebug("resolved menu", category.Name, numericId)
	return ResolvedMenu{Category: category, NumericID: numericId}, nil
}

// closestTitle is only used to make misses easier to diagnose, it never affects matching.
func closestTitle(doc *goquery.Document, expected string) (string, float64) {
	target := []rune(textutil.Normalize(expected))
	best := ""
	bestScore := 0.0
	doc.Find("span.title").Each(func(_ int, s *goquery.Selection) {
		// listing entries may carry trailing qualifiers, only compare the label-sized head
		title := []rune(textutil.Normalize(s.Text()))
		if len(title) > len(target) {
			title = title[:len(target)]
		}
		score := matchr.JaroWinkler(string(title), string(target), false)
		if score > bestScore {
			best = s.Text()
			bestScore = score
		}
	})
	return best, bestScore
}
