// Package pipeline runs one day's menu scrape end to end: it resolves this week's menus from
// the listing page, pulls the day's meal periods out of them and renders the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/internal/menu"
	"firstscoop-backend/internal/render"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("firstscoop/pipeline")

const (
	report_pipeline_fetch_menu = "pipeline.fetch-menu"
	report_pipeline_records    = "pipeline.records"
)

// ErrNoMenus means no category could be resolved and fetched, nothing should be published.
var ErrNoMenus = errors.New("no menus available")

// Fetcher retrieves the listing page and the weekly menu documents.
type Fetcher interface {
	FetchListing(ctx context.Context) (*goquery.Document, error)
	FetchMenu(ctx context.Context, menuId string) (*goquery.Document, error)
}

type Result struct {
	Date     menu.DateContext
	Resolved []menu.ResolvedMenu
	Sections menu.MealSections
	HTML     string
}

type Options struct {
	Selector  menu.MealSelector
	Extractor menu.Extractor
	Render    render.Options
}

type Pipeline struct {
	fetcher   Fetcher
	selector  menu.MealSelector
	extractor menu.Extractor
	render    render.Options
	locator   menu.Locator
	time      chrono.TimeAPI
	tel       telemetry.API
}

func NewPipeline(options Options, fetcher Fetcher, time chrono.TimeAPI, tel telemetry.API) Pipeline {
	assert.NotNil(fetcher)
	assert.NotNil(time)
	assert.NotNil(tel)

	if options.Selector == nil {
		options.Selector = menu.NutriticsSelector{LunchAliases: menu.DefaultLunchAliases}
	}
	if options.Extractor.PhotoURLPrefix == "" {
		options.Extractor.PhotoURLPrefix = menu.DefaultPhotoURLPrefix
	}
	if options.Extractor.Exclude == nil {
		options.Extractor.Exclude = menu.DefaultExclude
	}

	tel = telemetry.NewScopedAPI("pipeline", tel)

	return Pipeline{
		fetcher:   fetcher,
		selector:  options.Selector,
		extractor: options.Extractor,
		render:    options.Render,
		locator:   menu.NewLocator(tel),
		time:      time,
		tel:       tel,
	}
}

// Run scrapes and renders today's menu. Categories that cannot be resolved or fetched are
// skipped, only when every active category is lost (or the listing itself cannot be
// fetched) does it fail with ErrNoMenus.
func (p Pipeline) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline:run")
	defer span.End()

	dc := menu.NewDateContext(p.time.Now())
	span.SetAttributes(attribute.String("date", dc.Today.Format("2006-01-02")))

	result := Result{
		Date:     dc,
		Sections: menu.MealSections{},
	}

	listing, err := p.fetcher.FetchListing(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("%w: fetch listing: %w", ErrNoMenus, err)
	}

	for _, category := range menu.ActiveCategories(dc) {
		resolved, err := p.locator.Locate(listing, category, dc)
		if err != nil {
			continue
		}

		doc, err := p.fetcher.FetchMenu(ctx, resolved.NumericID)
		if err != nil {
			p.tel.ReportWarning(report_pipeline_fetch_menu, category.Name, err)
			continue
		}
		result.Resolved = append(result.Resolved, resolved)

		for _, period := range category.Periods {
			records := p.extractor.Extract(p.selector.Select(doc, period, dc))
			result.Sections[period] = records
			p.tel.ReportCount(fmt.Sprintf("%s.%s", report_pipeline_records, strings.ToLower(string(period))), int64(len(records)))
		}
	}

	if len(result.Resolved) == 0 {
		span.SetStatus(codes.Error, ErrNoMenus.Error())
		return result, ErrNoMenus
	}

	html, err := p.render.Render(result.Sections, dc)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	result.HTML = html

	return result, nil
}
