package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	ports "spendwise/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	valueInputUserEntered = "USER_ENTERED"
	sheetIDCacheTTL       = 10 * time.Minute
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Sheet ids only change when a tab is recreated, so lookups are cached.
	sheetIDs *cache.LRUCache[int64]
}

// Ensure interface conformance
var _ ports.Store = (*Client)(nil)

// Options configures a Client.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, Options{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      cache.NewLRUCache[int64](32, sheetIDCacheTTL),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// ReadRange returns the formatted cell text of a range. The API omits
// trailing empty cells, so rows may be shorter than the range.
func (c *Client) ReadRange(ctx context.Context, rangeSpec string) (core.RawTable, error) {
	if c.svc == nil {
		return nil, ports.Wrap("read", rangeSpec, errors.New("sheets service not initialized"))
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rangeSpec).
		ValueRenderOption("FORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, ports.Wrap("read", rangeSpec, err)
	}
	out := make(core.RawTable, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

// AppendRow inserts a row after the last row of the table in rangeSpec.
func (c *Client) AppendRow(ctx context.Context, rangeSpec string, row []string) (string, error) {
	if c.svc == nil {
		return "", ports.Wrap("append", rangeSpec, errors.New("sheets service not initialized"))
	}
	vr := &gsheet.ValueRange{Values: [][]any{toValues(row)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeSpec, vr).
		ValueInputOption(valueInputUserEntered).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", ports.Wrap("append", rangeSpec, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return "", ports.Wrap("append", rangeSpec, errors.New("response has no updated range"))
	}
	return resp.Updates.UpdatedRange, nil
}

// UpdateRow overwrites row rowIndex within the columns of rangeSpec.
func (c *Client) UpdateRow(ctx context.Context, rangeSpec string, rowIndex int, row []string) error {
	r, err := ports.ParseRange(rangeSpec)
	if err != nil {
		return ports.Wrap("update", rangeSpec, err)
	}
	if rowIndex < 1 {
		return ports.Wrap("update", rangeSpec, core.ErrInvalidRowNumber)
	}
	if c.svc == nil {
		return ports.Wrap("update", rangeSpec, errors.New("sheets service not initialized"))
	}
	target := r.Row(rowIndex)
	vr := &gsheet.ValueRange{Values: [][]any{toValues(row)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, vr).
		ValueInputOption(valueInputUserEntered).Context(ctx).Do()
	return ports.Wrap("update", target, err)
}

// DeleteRow removes a row, shifting the rows below it up.
func (c *Client) DeleteRow(ctx context.Context, sheetID int64, rowIndex int) error {
	op := fmt.Sprintf("sheet %d row %d", sheetID, rowIndex)
	if rowIndex < 1 {
		return ports.Wrap("delete", op, core.ErrInvalidRowNumber)
	}
	if c.svc == nil {
		return ports.Wrap("delete", op, errors.New("sheets service not initialized"))
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
					// The first tab has id 0 and row 1 starts at 0; zero
					// values are dropped from the request unless forced.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return ports.Wrap("delete", op, err)
}

// SheetID resolves a tab title to its numeric id.
func (c *Client) SheetID(ctx context.Context, title string) (int64, error) {
	if id, ok := c.sheetIDs.Get(title); ok {
		return id, nil
	}
	if c.svc == nil {
		return 0, ports.Wrap("metadata", title, errors.New("sheets service not initialized"))
	}
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, ports.Wrap("metadata", title, err)
	}
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		c.sheetIDs.Set(s.Properties.Title, s.Properties.SheetId)
	}
	if id, ok := c.sheetIDs.Get(title); ok {
		return id, nil
	}
	return 0, ports.Wrap("metadata", title, fmt.Errorf("sheet %q not found", title))
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toValues(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
