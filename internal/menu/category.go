package menu

// MealPeriod is a named slot within a day whose items are located by date-encoded markers.
type MealPeriod string

const (
	Lunch  MealPeriod = "Lunch"
	Dinner MealPeriod = "Dinner"
	Global MealPeriod = "Global"
)

// RenderOrder is the order meal periods appear in the rendered menu, independent of the
// order they were extracted in.
var RenderOrder = []MealPeriod{Global, Lunch, Dinner}

// Category is a top-level menu grouping with its own listing label.
type Category struct {
	Name    string
	Label   string
	Periods []MealPeriod

	activeWeekdays []int
}

var (
	MainCategory = Category{
		Name:           "Main",
		Label:          "Main Plate Lunch & Dinner",
		Periods:        []MealPeriod{Lunch, Dinner},
		activeWeekdays: []int{0, 1, 2, 3, 4, 5, 6},
	}
	// the global kitchen only serves Monday through Thursday
	GlobalCategory = Category{
		Name:           "Global",
		Label:          "Global Kitchen",
		Periods:        []MealPeriod{Global},
		activeWeekdays: []int{0, 1, 2, 3},
	}
)

// Categories lists every tracked category in resolution order.
var Categories = []Category{MainCategory, GlobalCategory}

// ActiveOn reports whether the category is served on the given weekday index (0 = Monday).
func (c Category) ActiveOn(weekdayIndex int) bool {
	for _, d := range c.activeWeekdays {
		if d == weekdayIndex {
			return true
		}
	}
	return false
}

// ActiveCategories returns the categories to resolve for the given day.
func ActiveCategories(dc DateContext) []Category {
	var out []Category
	for _, c := range Categories {
		if c.ActiveOn(dc.WeekdayIndex) {
			out = append(out, c)
		}
	}
	return out
}

// ResolvedMenu is a category whose weekly menu id was found on the listing page.
type ResolvedMenu struct {
	Category  Category
	NumericID string
}
