package subscribers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	report_sheet_list   = "sheet.list"
	report_sheet_remove = "sheet.remove"
)

type SheetOptions struct {
	SpreadsheetId string
	// Sheet is the tab name, the google form response tab by default.
	Sheet string
	// Column holds one email per row.
	Column string
	// HeaderRows are skipped at the top of the column.
	HeaderRows int
}

func (o SheetOptions) withDefaults() SheetOptions {
	if o.Sheet == "" {
		o.Sheet = "Form Responses 1"
	}
	if o.Column == "" {
		o.Column = "B"
	}
	if o.HeaderRows <= 0 {
		o.HeaderRows = 1
	}
	return o
}

// Range is the A1 notation of the email column without the header, ex. `Form Responses 1!B2:B`.
func (o SheetOptions) Range() string {
	o = o.withDefaults()
	return fmt.Sprintf("%s!%s%d:%s", o.Sheet, o.Column, o.HeaderRows+1, o.Column)
}

// SheetSource keeps the subscriber list in a google sheet fed by a sign up form.
type SheetSource struct {
	service *sheets.Service
	options SheetOptions
	tel     telemetry.API

	// deletes shift rows, so removals are serialized
	mutex *sync.Mutex
}

func NewSheetSource(ctx context.Context, options SheetOptions, tel telemetry.API, clientOptions ...option.ClientOption) (SheetSource, error) {
	assert.NotNil(tel)
	if options.SpreadsheetId == "" {
		return SheetSource{}, fmt.Errorf("spreadsheet id is required")
	}

	service, err := sheets.NewService(ctx, clientOptions...)
	if err != nil {
		return SheetSource{}, fmt.Errorf("create sheets service: %w", err)
	}
	return SheetSource{
		service: service,
		options: options.withDefaults(),
		tel:     telemetry.NewScopedAPI("subscribers", tel),
		mutex:   &sync.Mutex{},
	}, nil
}

// column returns the cells of the email column in row order, blank rows included so
// positions map back to rows.
func (s SheetSource) column(ctx context.Context) ([]string, error) {
	res, err := s.service.Spreadsheets.Values.
		Get(s.options.SpreadsheetId, s.options.Range()).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]string, len(res.Values))
	for i, row := range res.Values {
		if len(row) == 0 {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
	}
	return out, nil
}

func (s SheetSource) List(ctx context.Context) ([]Subscriber, error) {
	cells, err := s.column(ctx)
	if err != nil {
		s.tel.ReportBroken(report_sheet_list, err)
		return nil, fmt.Errorf("read subscribers: %w", err)
	}

	var out []Subscriber
	for _, email := range cells {
		if email == "" {
			continue
		}
		out = append(out, Subscriber{Email: email})
	}
	return out, nil
}

func (s SheetSource) RemoveByHash(ctx context.Context, hash string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cells, err := s.column(ctx)
	if err != nil {
		s.tel.ReportBroken(report_sheet_remove, err)
		return "", fmt.Errorf("read subscribers: %w", err)
	}

	position := -1
	for i, email := range cells {
		if email != "" && HashEmail(email) == hash {
			position = i
			break
		}
	}
	if position < 0 {
		return "", ErrNotFound
	}

	sheetId, err := s.sheetId(ctx)
	if err != nil {
		s.tel.ReportBroken(report_sheet_remove, err)
		return "", err
	}

	row := int64(position + s.options.HeaderRows)
	_, err = s.service.Spreadsheets.BatchUpdate(s.options.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:         sheetId,
						Dimension:       "ROWS",
						StartIndex:      row,
						EndIndex:        row + 1,
						// the first tab usually has id 0
						ForceSendFields: []string{"SheetId", "StartIndex"},
					},
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		s.tel.ReportBroken(report_sheet_remove, err, row)
		return "", fmt.Errorf("delete row %d: %w", row, err)
	}

	return cells[position], nil
}

func (s SheetSource) sheetId(ctx context.Context) (int64, error) {
	spreadsheet, err := s.service.Spreadsheets.
		Get(s.options.SpreadsheetId).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.options.Sheet {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", s.options.Sheet)
}
