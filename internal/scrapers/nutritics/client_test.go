package nutritics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"firstscoop-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/menu/ma4003", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="menu" id="m482"><span class="title">Main Plate Lunch & Dinner - March 4</span></div></body></html>`))
	})
	mux.HandleFunc("/menu/ma4003/482", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "firstscoop-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><body><div class="item g-MondayMarch4Lunch" data-name="Rice"></div></body></html>`))
	})
	mux.HandleFunc("/menu/ma4003/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchListingAndMenu(t *testing.T) {
	server := newTestServer(t)

	client, err := NewClient(Options{
		BaseUrl:   server.URL + "/menu/ma4003/",
		UserAgent: "firstscoop-test",
	}, &telemetry.Recorder{})
	require.NoError(t, err)

	listing, err := client.FetchListing(context.Background())
	require.NoError(t, err)
	require.Equal(t, "m482", listing.Find("div.menu").AttrOr("id", ""))

	doc, err := client.FetchMenu(context.Background(), "482")
	require.NoError(t, err)
	require.Equal(t, "Rice", doc.Find(".item").AttrOr("data-name", ""))
}

func TestFetchMenuNonSuccess(t *testing.T) {
	server := newTestServer(t)
	recorder := &telemetry.Recorder{}

	client, err := NewClient(Options{BaseUrl: server.URL + "/menu/ma4003"}, recorder)
	require.NoError(t, err)

	_, err = client.FetchMenu(context.Background(), "500")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	require.Equal(t, server.URL+"/menu/ma4003/500", fetchErr.URL)

	broken := recorder.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "nutritics: client.fetch-menu", broken[0].ID)

	_, err = client.FetchMenu(context.Background(), "404")
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestMenuUrl(t *testing.T) {
	client, err := NewClient(Options{}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, "https://www.nutritics.com/menu/ma4003/482", client.MenuUrl("482"))
}

func TestDumpDir(t *testing.T) {
	server := newTestServer(t)
	dir := filepath.Join(t.TempDir(), "dump")

	client, err := NewClient(Options{
		BaseUrl:   server.URL + "/menu/ma4003",
		UserAgent: "firstscoop-test",
		DumpDir:   dir,
	}, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = client.FetchListing(context.Background())
	require.NoError(t, err)
	_, err = client.FetchMenu(context.Background(), "482")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
