package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/internal/menu"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const listingHtml = `<html><body>
<div class="menu" id="m482"><span class="title">Main Plate Lunch &amp; Dinner - March 4</span></div>
<div class="menu" id="m77"><span class="title">Global Kitchen - March 4</span></div>
<div class="menu" id="m12"><span class="title">Main Plate Lunch &amp; Dinner - February 26</span></div>
</body></html>`

const mainHtml = `<html><body>
<div class="item g-MondayMarch4Lunch" data-name="Rice" data-cals="300"></div>
<div class="item g-MondayMarch4Lunch" data-name="Pepperoni Pizza" data-cals="700"></div>
<div class="item g-MondayMarch4Dinner" data-name="Soup" data-fid="9"></div>
<div class="item g-FridayMarch8Lunch" data-name="Fish"></div>
</body></html>`

const globalHtml = `<html><body>
<div class="item g-MondayGlobal" data-name="Bibimbap"></div>
</body></html>`

type fakeFetcher struct {
	listing    string
	listingErr error
	menus      map[string]string
	calls      []string
}

func (f *fakeFetcher) FetchListing(ctx context.Context) (*goquery.Document, error) {
	f.calls = append(f.calls, "listing")
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.listing))
}

func (f *fakeFetcher) FetchMenu(ctx context.Context, menuId string) (*goquery.Document, error) {
	f.calls = append(f.calls, menuId)
	body, ok := f.menus[menuId]
	if !ok {
		return nil, errors.New("unexpected status 500")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

func at(year int, month time.Month, day int) chrono.TimeAPI {
	return chrono.FixedTime{At: time.Date(year, month, day, 6, 0, 0, 0, time.UTC)}
}

func names(records []menu.FoodRecord) []string {
	out := []string{}
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestRunMonday(t *testing.T) {
	fetcher := &fakeFetcher{
		listing: listingHtml,
		menus:   map[string]string{"482": mainHtml, "77": globalHtml},
	}
	recorder := &telemetry.Recorder{}
	p := NewPipeline(Options{}, fetcher, at(2024, time.March, 4), recorder)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"listing", "482", "77"}, fetcher.calls)
	require.Len(t, result.Resolved, 2)
	require.Equal(t, "482", result.Resolved[0].NumericID)
	require.Equal(t, "77", result.Resolved[1].NumericID)

	require.Equal(t, []string{"Rice"}, names(result.Sections[menu.Lunch]))
	require.Equal(t, []string{"Soup"}, names(result.Sections[menu.Dinner]))
	require.Equal(t, []string{"Bibimbap"}, names(result.Sections[menu.Global]))

	require.Contains(t, result.HTML, "<h1>Monday, March 04</h1>")
	require.Contains(t, result.HTML, "<h2>Global Kitchen</h2>")
	require.Empty(t, recorder.Reports("warning"))
}

func TestRunSkipsGlobalOnFriday(t *testing.T) {
	fetcher := &fakeFetcher{
		listing: listingHtml,
		menus:   map[string]string{"482": mainHtml, "77": globalHtml},
	}
	p := NewPipeline(Options{}, fetcher, at(2024, time.March, 8), &telemetry.Recorder{})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"listing", "482"}, fetcher.calls)
	require.Equal(t, []string{"Fish"}, names(result.Sections[menu.Lunch]))
	_, ok := result.Sections[menu.Global]
	require.False(t, ok)
	require.NotContains(t, result.HTML, "Global Kitchen</h2>")
}

func TestRunPartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		listing: listingHtml,
		menus:   map[string]string{"77": globalHtml},
	}
	recorder := &telemetry.Recorder{}
	p := NewPipeline(Options{}, fetcher, at(2024, time.March, 4), recorder)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Resolved, 1)
	require.Equal(t, menu.GlobalCategory.Name, result.Resolved[0].Category.Name)
	require.Empty(t, result.Sections[menu.Lunch])
	require.NotContains(t, result.HTML, "<h2>Lunch</h2>")
	require.Len(t, recorder.Reports("warning"), 1)
}

func TestRunNoMenus(t *testing.T) {
	t.Run("nothing resolves", func(t *testing.T) {
		fetcher := &fakeFetcher{listing: listingHtml}
		// March 18 belongs to a week that is not on the listing
		p := NewPipeline(Options{}, fetcher, at(2024, time.March, 18), &telemetry.Recorder{})

		result, err := p.Run(context.Background())
		require.ErrorIs(t, err, ErrNoMenus)
		require.Empty(t, result.HTML)
		require.Equal(t, []string{"listing"}, fetcher.calls)
	})

	t.Run("every fetch fails", func(t *testing.T) {
		fetcher := &fakeFetcher{listing: listingHtml}
		p := NewPipeline(Options{}, fetcher, at(2024, time.March, 5), &telemetry.Recorder{})

		result, err := p.Run(context.Background())
		require.ErrorIs(t, err, ErrNoMenus)
		// nothing is rendered, an empty menu is never published
		require.Empty(t, result.HTML)
		require.Equal(t, []string{"listing", "482", "77"}, fetcher.calls)
	})

	t.Run("listing fails", func(t *testing.T) {
		listingErr := errors.New("connection refused")
		fetcher := &fakeFetcher{listingErr: listingErr}
		p := NewPipeline(Options{}, fetcher, at(2024, time.March, 4), &telemetry.Recorder{})

		_, err := p.Run(context.Background())
		require.ErrorIs(t, err, ErrNoMenus)
		require.ErrorIs(t, err, listingErr)
		require.Equal(t, []string{"listing"}, fetcher.calls)
	})
}

func TestRunCustomOptions(t *testing.T) {
	fetcher := &fakeFetcher{
		listing: listingHtml,
		menus:   map[string]string{"482": mainHtml, "77": globalHtml},
	}
	p := NewPipeline(Options{
		Extractor: menu.Extractor{Exclude: []string{"rice"}},
	}, fetcher, at(2024, time.March, 4), &telemetry.Recorder{})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Pepperoni Pizza"}, names(result.Sections[menu.Lunch]))
}
