package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDirectoryDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-menu", "weekly")
		w.Write([]byte(`<div class="menu" id="m482"></div>`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	dump, err := NewDirectoryDump(dir)
	require.NoError(t, err)

	client := resty.New()
	client.SetHeader("user-agent", "firstscoop-test")
	dump.Attach(client)

	_, err = client.R().Get(server.URL + "/menu/ma4003")
	require.NoError(t, err)
	_, err = client.R().Get(server.URL + "/menu/ma4003/482")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "001-menu_ma4003.txt", entries[0].Name())
	require.Equal(t, "002-menu_ma4003_482.txt", entries[1].Name())

	content, err := os.ReadFile(filepath.Join(dir, entries[1].Name()))
	require.NoError(t, err)
	require.Contains(t, string(content), "GET "+server.URL+"/menu/ma4003/482")
	require.Contains(t, string(content), "User-Agent: firstscoop-test")
	require.Contains(t, string(content), "200 OK")
	require.Contains(t, string(content), "X-Menu: weekly")
	require.Contains(t, string(content), `<div class="menu" id="m482"></div>`)

	// a new dump starts from a clean directory
	_, err = NewDirectoryDump(dir)
	require.NoError(t, err)
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
