// Package restyutil keeps raw http exchanges of a resty client around so a broken scrape can
// be inspected after the fact.
package restyutil

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: response status
// 5: response headers in ("Key: Value" format)
// 6: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

---- RESPONSE ----

%s

%s

%s`

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatExchange renders a response and the request that produced it as plain text.
func FormatExchange(res *resty.Response) string {
	var requestHeaders string
	if res.Request.RawRequest != nil {
		requestHeaders = formatHeaders(res.Request.RawRequest.Header)
	}
	return fmt.Sprintf(
		exchangeTemplate,
		res.Request.Method, res.Request.URL,
		requestHeaders,
		res.Status(),
		formatHeaders(res.Header()),
		res.String(),
	)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// DirectoryDump writes every exchange into its own file inside a directory.
type DirectoryDump struct {
	directory string
	counter   *uint64
}

// NewDirectoryDump creates the directory, a previous dump in it is replaced.
func NewDirectoryDump(dir string) (DirectoryDump, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return DirectoryDump{}, err
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return DirectoryDump{}, err
	}
	var counter uint64
	return DirectoryDump{directory: dir, counter: &counter}, nil
}

// Attach dumps every response the client receives from now on.
func (d DirectoryDump) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		d.Write(res)
		return nil
	})
}

// Write names the file after the order of the exchange and its url path, ex.
// `002-menu_ma4003_482.txt`.
func (d DirectoryDump) Write(res *resty.Response) {
	n := atomic.AddUint64(d.counter, 1)
	name := res.Request.URL
	if parsed, err := url.Parse(res.Request.URL); err == nil {
		name = parsed.Path
	}
	name = strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
	path := filepath.Join(d.directory, fmt.Sprintf("%03d-%s.txt", n, name))

	err := os.WriteFile(path, []byte(FormatExchange(res)), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "path", path, "err", err)
	}
}
