// client.go contains the logic for fetching pages from a nutritics.com menu site, it knows
// nothing about how the pages are interpreted.

package nutritics

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_listing = "client.fetch-listing"
	report_client_fetch_menu    = "client.fetch-menu"
)

const DefaultBaseUrl = "https://www.nutritics.com/menu/ma4003"

// FetchError is returned when the site answers with a non-success status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

type Options struct {
	// BaseUrl is the menu listing page, menus live at `<BaseUrl>/<menu id>`.
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// CloudflareBypass wraps the transport to look like a regular browser.
	CloudflareBypass bool
	// DumpDir keeps a copy of every fetched page, used to debug markup changes.
	DumpDir string
}

// Client fetches menu listing and menu documents. It does not retry: a transient failure
// drops that day's data for the category, the next daily run corrects it.
type Client struct {
	http    *resty.Client
	baseUrl string
	tel     telemetry.API
}

func NewClient(options Options, tel telemetry.API) (Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("nutritics", tel)

	if options.BaseUrl == "" {
		options.BaseUrl = DefaultBaseUrl
	}
	baseUrl := strings.TrimRight(options.BaseUrl, "/")
	if _, err := url.Parse(baseUrl); err != nil {
		return Client{}, err
	}
	if options.Timeout == 0 {
		options.Timeout = time.Second * 30
	}
	if options.UserAgent == "" {
		options.UserAgent = "Mozilla/5.0 (compatible; firstscoop/1.0)"
	}

	httpClient := resty.New()
	httpClient.SetHeader("user-agent", options.UserAgent)
	httpClient.SetTimeout(options.Timeout)
	if options.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	// be polite, a run makes at most a handful of requests anyway
	rateLimiter := rate.NewLimiter(2, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)

	if options.DumpDir != "" {
		dump, err := restyutil.NewDirectoryDump(options.DumpDir)
		if err != nil {
			return Client{}, err
		}
		dump.Attach(httpClient)
	}

	return Client{
		http:    httpClient,
		baseUrl: baseUrl,
		tel:     tel,
	}, nil
}

// MenuUrl is the url of the menu document with the given id.
func (c Client) MenuUrl(menuId string) string {
	return fmt.Sprintf("%s/%s", c.baseUrl, url.PathEscape(menuId))
}

// FetchListing fetches the parent page enumerating the weekly menus.
func (c Client) FetchListing(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.fetch(ctx, c.baseUrl)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_listing, err)
		return nil, err
	}
	return doc, nil
}

// FetchMenu fetches the weekly menu document with the given numeric id.
func (c Client) FetchMenu(ctx context.Context, menuId string) (*goquery.Document, error) {
	doc, err := c.fetch(ctx, c.MenuUrl(menuId))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_menu, err, menuId)
		return nil, err
	}
	return doc, nil
}

func (c Client) fetch(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", link, err)
	}
	if !res.IsSuccess() {
		return nil, &FetchError{URL: link, StatusCode: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse html of %s: %w", link, err)
	}
	return doc, nil
}
