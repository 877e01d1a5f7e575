// Package render turns extracted menu sections into the standalone HTML document that gets
// uploaded and mailed out.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"firstscoop-backend/internal/menu"
)

// UnsubscribePlaceholder is left verbatim in the document, the dispatcher replaces it per
// recipient.
const UnsubscribePlaceholder = "{{unsubscribe_url}}"

const (
	DefaultTitle   = "First Scoop"
	DefaultMenuURL = "https://www.nutritics.com/menu/ma4003"

	missing = "n/a"
)

var headings = map[menu.MealPeriod]string{
	menu.Global: "Global Kitchen",
	menu.Lunch:  "Lunch",
	menu.Dinner: "Dinner",
}

//go:embed menu.html.tmpl
var menuTemplateText string

// the delimiters are changed so the unsubscribe placeholder can live in the template text
var menuTemplate = template.Must(
	template.New("menu").
		Delims("[[", "]]").
		Parse(menuTemplateText),
)

type row struct {
	Name      string
	Calories  string
	Allergens string
	Carbs     string
	Protein   string
	Fat       string
	PhotoURL  string
}

type section struct {
	Heading string
	Rows    []row
}

type page struct {
	Title    string
	Header   string
	MenuURL  string
	Sections []section
}

// Options are the fixed parts of the document that are not derived from the menu.
type Options struct {
	Title   string
	MenuURL string
}

// Render renders the sections with the default options.
func Render(sections menu.MealSections, dc menu.DateContext) (string, error) {
	return Options{}.Render(sections, dc)
}

// Render is deterministic, the same sections and date always produce the same bytes.
// Sections are emitted in menu.RenderOrder and empty ones are left out entirely.
func (o Options) Render(sections menu.MealSections, dc menu.DateContext) (string, error) {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.MenuURL == "" {
		o.MenuURL = DefaultMenuURL
	}

	p := page{
		Title:   o.Title,
		Header:  dc.HeaderDate(),
		MenuURL: o.MenuURL,
	}
	for _, period := range menu.RenderOrder {
		records := sections[period]
		if len(records) == 0 {
			continue
		}
		s := section{Heading: headings[period]}
		for _, record := range records {
			s.Rows = append(s.Rows, toRow(record))
		}
		p.Sections = append(p.Sections, s)
	}

	buff := bytes.NewBuffer(nil)
	err := menuTemplate.Execute(buff, p)
	if err != nil {
		return "", fmt.Errorf("render menu: %w", err)
	}
	return buff.String(), nil
}

func toRow(record menu.FoodRecord) row {
	calories := missing
	if cals, ok := record.Calories.Get(); ok {
		calories = fmt.Sprintf("%s calories", cals)
	}
	allergens := missing
	if len(record.Allergens) > 0 {
		allergens = strings.Join(record.Allergens, ", ")
	}
	return row{
		Name:      record.Name,
		Calories:  calories,
		Allergens: allergens,
		Carbs:     record.Carbs.Or(missing),
		Protein:   record.Protein.Or(missing),
		Fat:       record.Fat.Or(missing),
		PhotoURL:  record.PhotoURL,
	}
}
