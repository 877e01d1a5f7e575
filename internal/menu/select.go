package menu

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MealSelector picks the elements of a menu document that belong to one meal period of
// the day. There is one implementation per known site markup convention, a markup change
// should only require a new implementation.
type MealSelector interface {
	// Select returns the matching elements in document order, an empty selection is the
	// expected result for periods not served on the day.
	Select(doc *goquery.Document, period MealPeriod, dc DateContext) *goquery.Selection
}

// DefaultLunchAliases are period names the menu authors use instead of "Lunch" on holidays
// and special days.
var DefaultLunchAliases = []string{"Brunch", "Polish"}

// NutriticsSelector implements the nutritics.com markup, where each item is tagged with a
// class built from the date and meal period, ex. `item g-MondayMarch4Lunch`.
type NutriticsSelector struct {
	LunchAliases []string
}

// Selector returns the CSS selector used for a meal period.
func (n NutriticsSelector) Selector(period MealPeriod, dc DateContext) string {
	switch period {
	case Lunch:
		suffixes := append([]string{string(Lunch)}, n.LunchAliases...)
		parts := make([]string, len(suffixes))
		for i, suffix := range suffixes {
			parts[i] = fmt.Sprintf(".item.g-%s%s", dc.FormattedCompact, suffix)
		}
		// a single selector group keeps document order across the union
		return strings.Join(parts, ", ")
	case Dinner:
		return fmt.Sprintf(".item.g-%s%s", dc.FormattedCompact, Dinner)
	case Global:
		// the global kitchen menu is keyed by weekday only
		return fmt.Sprintf(`[class^="item g-%s"]`, dc.WeekdayName)
	}
	return ""
}

func (n NutriticsSelector) Select(doc *goquery.Document, period MealPeriod, dc DateContext) *goquery.Selection {
	selector := n.Selector(period, dc)
	if selector == "" {
		return doc.FindNodes()
	}
	return doc.Find(selector)
}
