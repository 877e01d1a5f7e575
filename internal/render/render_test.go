package render

import (
	"strings"
	"testing"
	"time"

	"firstscoop-backend/internal/menu"

	"github.com/stretchr/testify/require"
)

func monday() menu.DateContext {
	return menu.NewDateContext(time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC))
}

func TestRenderEmptySections(t *testing.T) {
	for _, sections := range []menu.MealSections{nil, {}, {menu.Lunch: {}, menu.Dinner: nil}} {
		out, err := Render(sections, monday())
		require.NoError(t, err)

		require.Contains(t, out, "<h1>Monday, March 04</h1>")
		require.Contains(t, out, "<footer")
		require.Contains(t, out, `href="{{unsubscribe_url}}"`)
		require.NotContains(t, out, "<h2>")
		require.NotContains(t, out, `<table class="menu">`)
	}
}

func TestRenderOrderAndRows(t *testing.T) {
	sections := menu.MealSections{
		menu.Dinner: {{Name: "Pasta", Calories: menu.Present("500"), Allergens: []string{}}},
		menu.Lunch: {
			{
				Name:      "Rice",
				Calories:  menu.Present("300"),
				Carbs:     menu.Present("62"),
				Protein:   menu.Present("6"),
				Fat:       menu.Present("0"),
				PhotoURL:  "https://www.nutritics.com/images/food/f9.jpg",
				Allergens: []string{"Soy", "Wheat"},
			},
		},
		menu.Global: {{Name: "Bibimbap", Allergens: []string{}}},
	}

	out, err := Render(sections, monday())
	require.NoError(t, err)

	global := strings.Index(out, "<h2>Global Kitchen</h2>")
	lunch := strings.Index(out, "<h2>Lunch</h2>")
	dinner := strings.Index(out, "<h2>Dinner</h2>")
	require.True(t, global > 0 && global < lunch && lunch < dinner, out)

	require.Contains(t, out, "<em>Rice</em><br>300 calories<br><span class=\"allergen\">Soy, Wheat</span>")
	require.Contains(t, out, `<img src="https://www.nutritics.com/images/food/f9.jpg" alt="Rice"`)
	require.Contains(t, out, "<td>62</td><td>6</td><td>0</td>")

	// absent values are never rendered as zero
	require.Contains(t, out, "<em>Bibimbap</em><br>n/a<br><span class=\"allergen\">n/a</span></td><td></td><td>n/a</td><td>n/a</td><td>n/a</td>")
	require.Equal(t, 1, strings.Count(out, "<img "))
}

func TestRenderEscapesScrapedText(t *testing.T) {
	sections := menu.MealSections{
		menu.Lunch: {{Name: `Mac & Cheese <b>"new"</b>`, Allergens: []string{"<script>"}}},
	}
	out, err := Render(sections, monday())
	require.NoError(t, err)

	require.NotContains(t, out, "<b>")
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "Mac &amp; Cheese &lt;b&gt;&#34;new&#34;&lt;/b&gt;")
}

func TestRenderDeterministic(t *testing.T) {
	sections := menu.MealSections{
		menu.Lunch:  {{Name: "Rice", Calories: menu.Present("300"), Allergens: []string{}}},
		menu.Dinner: {{Name: "Soup", Allergens: []string{"Milk"}}},
	}
	first, err := Render(sections, monday())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Render(sections, monday())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestRenderOptions(t *testing.T) {
	out, err := Options{Title: "Dining Hall", MenuURL: "https://example.com/menu"}.Render(nil, monday())
	require.NoError(t, err)
	require.Contains(t, out, "<title>Dining Hall</title>")
	require.Contains(t, out, `href="https://example.com/menu"`)
	require.Equal(t, 1, strings.Count(out, UnsubscribePlaceholder))
}
