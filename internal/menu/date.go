package menu

import "time"

// DateContext holds the calendar facts every lookup of a run is derived from.
// It is computed once per run and never mutated.
type DateContext struct {
	// Today is the current date at midnight in the site's location.
	Today time.Time
	// MostRecentMonday is the Monday starting the current menu week, Today if Today is a Monday.
	MostRecentMonday time.Time
	// WeekdayName is the English weekday name of Today (ex. "Monday").
	WeekdayName string
	// WeekdayIndex counts days since Monday, 0 = Monday .. 6 = Sunday.
	WeekdayIndex int
	// FormattedMonthDay labels the menu week on the listing page (ex. "March 4").
	FormattedMonthDay string
	// FormattedCompact is the token the menu document keys meal periods by (ex. "MondayMarch4").
	FormattedCompact string
}

// NewDateContext computes the DateContext for now. No timezone conversion is done, now must
// already be in the location the menu site publishes in.
func NewDateContext(now time.Time) DateContext {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekdayIndex := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -weekdayIndex)

	return DateContext{
		Today:             today,
		MostRecentMonday:  monday,
		WeekdayName:       today.Weekday().String(),
		WeekdayIndex:      weekdayIndex,
		FormattedMonthDay: monday.Format("January 2"),
		FormattedCompact:  today.Format("MondayJanuary2"),
	}
}

// HeaderDate is the human readable date used as the heading of the rendered menu.
func (d DateContext) HeaderDate() string {
	return d.Today.Format("Monday, January 02")
}
