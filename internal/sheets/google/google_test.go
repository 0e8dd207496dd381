package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"spendwise/internal/core"
	ports "spendwise/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type recordedCall struct {
	method string
	path   string
	query  string
	body   string
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	for suffix, h := range f.handlers {
		if strings.HasPrefix(suffix, r.Method+" ") && strings.HasSuffix(r.URL.Path, strings.TrimPrefix(suffix, r.Method+" ")) {
			h(w, r)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
}

func (f *fakeSheetsAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "sheet-123")
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: "/nonexistent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadRange(t *testing.T) {
	api := &fakeSheetsAPI{handlers: map[string]func(http.ResponseWriter, *http.Request){
		"GET /values/Configured_Input!A:O": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"range": "Configured_Input!A1:F3",
				"values": [][]any{
					{"WeekNum", "Amount", "Category"},
					{"1", " $20.00 ", "Food"},
					{2, 30.5},
				},
			})
		},
	}}
	c := newTestClient(t, api)

	rows, err := c.ReadRange(context.Background(), "Configured_Input!A:O")
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "$20.00" || rows[2][0] != "2" || rows[2][1] != "30.5" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if !strings.Contains(api.calls[0].query, "valueRenderOption=FORMATTED_VALUE") {
		t.Fatalf("expected formatted values, query=%s", api.calls[0].query)
	}
}

func TestReadRange_StoreError(t *testing.T) {
	c := newTestClient(t, &fakeSheetsAPI{})
	_, err := c.ReadRange(context.Background(), "Missing!A:B")
	var se *ports.StoreError
	if !errors.As(err, &se) || se.Op != "read" {
		t.Fatalf("expected read StoreError, got %v", err)
	}
}

func TestAppendRow(t *testing.T) {
	api := &fakeSheetsAPI{handlers: map[string]func(http.ResponseWriter, *http.Request){
		"POST /values/Tracker_Sheet!A:D:append": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"updates": map[string]any{"updatedRange": "Tracker_Sheet!A7:D7"}})
		},
	}}
	c := newTestClient(t, api)

	ref, err := c.AppendRow(context.Background(), "Tracker_Sheet!A:D", []string{"2025-01-02", "20.00", "Food", "Groceries"})
	if err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if ref != "Tracker_Sheet!A7:D7" {
		t.Fatalf("unexpected ref %q", ref)
	}
	call := api.calls[0]
	if !strings.Contains(call.query, "valueInputOption=USER_ENTERED") || !strings.Contains(call.query, "insertDataOption=INSERT_ROWS") {
		t.Fatalf("unexpected query %s", call.query)
	}
	if !strings.Contains(call.body, `"Groceries"`) {
		t.Fatalf("row not sent, body=%s", call.body)
	}
}

func TestUpdateRow(t *testing.T) {
	api := &fakeSheetsAPI{handlers: map[string]func(http.ResponseWriter, *http.Request){
		"PUT /values/Tracker_Sheet!A4:D4": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"updatedRows": 1})
		},
	}}
	c := newTestClient(t, api)

	if err := c.UpdateRow(context.Background(), "Tracker_Sheet!A:D", 4, []string{"2025-01-02", "25", "Food", ""}); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if err := c.UpdateRow(context.Background(), "Tracker_Sheet!A:D", 0, nil); !errors.Is(err, core.ErrInvalidRowNumber) {
		t.Fatalf("expected ErrInvalidRowNumber, got %v", err)
	}
}

func TestDeleteRow_SendsZeroIndexes(t *testing.T) {
	api := &fakeSheetsAPI{handlers: map[string]func(http.ResponseWriter, *http.Request){
		"POST /spreadsheets/sheet-123:batchUpdate": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"spreadsheetId": "sheet-123"})
		},
	}}
	c := newTestClient(t, api)

	if err := c.DeleteRow(context.Background(), 0, 1); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	var req gsheet.BatchUpdateSpreadsheetRequest
	if err := json.Unmarshal([]byte(api.calls[0].body), &req); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	body := api.calls[0].body
	if !strings.Contains(body, `"sheetId":0`) || !strings.Contains(body, `"startIndex":0`) || !strings.Contains(body, `"endIndex":1`) {
		t.Fatalf("zero-valued fields missing from request: %s", body)
	}
	if req.Requests[0].DeleteDimension.Range.Dimension != "ROWS" {
		t.Fatalf("expected ROWS dimension")
	}
}

func TestSheetID_Cached(t *testing.T) {
	api := &fakeSheetsAPI{handlers: map[string]func(http.ResponseWriter, *http.Request){
		"GET /spreadsheets/sheet-123": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 0, "title": "Configured_Input"}},
				map[string]any{"properties": map[string]any{"sheetId": 918273, "title": "Tracker_Sheet"}},
			}})
		},
	}}
	c := newTestClient(t, api)
	ctx := context.Background()

	id, err := c.SheetID(ctx, "Tracker_Sheet")
	if err != nil || id != 918273 {
		t.Fatalf("unexpected id %d err=%v", id, err)
	}
	id, err = c.SheetID(ctx, "Configured_Input")
	if err != nil || id != 0 {
		t.Fatalf("unexpected id %d err=%v", id, err)
	}
	if api.callCount() != 1 {
		t.Fatalf("expected one metadata call, got %d", api.callCount())
	}

	if _, err := c.SheetID(ctx, "Nope"); err == nil {
		t.Fatal("expected error for unknown sheet")
	}
}

func TestNilService(t *testing.T) {
	c := &Client{spreadsheetID: "x"}
	var se *ports.StoreError
	if _, err := c.ReadRange(context.Background(), "A!A:B"); !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if _, err := c.AppendRow(context.Background(), "A!A:B", nil); !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}
