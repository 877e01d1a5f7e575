package subscribers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"firstscoop-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	mutex   sync.Mutex
	rows    [][]any
	deletes []*sheets.DimensionRange
	ranges  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	w.Header().Set("content-type", "application/json")
	switch {
	case strings.Contains(r.URL.Path, "/values/"):
		f.ranges = append(f.ranges, r.URL.Path[strings.Index(r.URL.Path, "/values/")+len("/values/"):])
		json.NewEncoder(w).Encode(map[string]any{
			"majorDimension": "ROWS",
			"values":         f.rows,
		})
	case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, request := range req.Requests {
			rng := request.DeleteDimension.Range
			f.deletes = append(f.deletes, rng)
			// rows are 0 indexed and include the header
			position := int(rng.StartIndex) - 1
			f.rows = append(f.rows[:position], f.rows[position+1:]...)
		}
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet123"})
	default:
		json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 5, "title": "Other"}},
				map[string]any{"properties": map[string]any{"sheetId": 0, "title": "Form Responses 1"}},
			},
		})
	}
}

func newSheetSource(t testing.TB, fake *fakeSheets) SheetSource {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	source, err := NewSheetSource(
		context.Background(),
		SheetOptions{SpreadsheetId: "sheet123"},
		&telemetry.Recorder{},
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return source
}

func TestSheetRange(t *testing.T) {
	require.Equal(t, "Form Responses 1!B2:B", SheetOptions{}.Range())
	require.Equal(t, "Signups!C3:C", SheetOptions{Sheet: "Signups", Column: "C", HeaderRows: 2}.Range())
}

func TestSheetList(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{{"a@x.com"}, {}, {" b@x.com "}, {""}}}
	source := newSheetSource(t, fake)

	list, err := source.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Subscriber{{Email: "a@x.com"}, {Email: "b@x.com"}}, list)
	require.Equal(t, []string{"Form Responses 1!B2:B"}, fake.ranges)
}

func TestSheetRemoveByHash(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{{"a@x.com"}, {}, {"b@x.com"}, {"c@x.com"}}}
	source := newSheetSource(t, fake)

	email, err := source.RemoveByHash(context.Background(), HashEmail("b@x.com"))
	require.NoError(t, err)
	require.Equal(t, "b@x.com", email)

	require.Len(t, fake.deletes, 1)
	// header row + 2 rows above it
	require.Equal(t, int64(3), fake.deletes[0].StartIndex)
	require.Equal(t, int64(4), fake.deletes[0].EndIndex)
	require.Equal(t, int64(0), fake.deletes[0].SheetId)
	require.Equal(t, "ROWS", fake.deletes[0].Dimension)

	list, err := source.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Subscriber{{Email: "a@x.com"}, {Email: "c@x.com"}}, list)

	_, err = source.RemoveByHash(context.Background(), HashEmail("b@x.com"))
	require.ErrorIs(t, err, ErrNotFound)
	require.Len(t, fake.deletes, 1)
}
