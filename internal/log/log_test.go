package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentReport)

	logger.Info("built", FieldWeek, 3)
	entry := decodeLine(t, &buf)
	if entry[FieldComponent] != ComponentReport {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentReport)
	}
	if entry[FieldWeek] != float64(3) {
		t.Errorf("week = %v, want 3", entry[FieldWeek])
	}
}

func TestNewContext_FromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP).WithComponent(ComponentLedger)

	got := FromContext(NewContext(context.Background(), logger))
	if got != logger || got.Component() != ComponentLedger {
		t.Fatalf("expected the ledger logger back from the context, got %+v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected the default logger outside a request")
	}
}

func TestStructuredLogger_HTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))
			r := httptest.NewRequest(http.MethodGet, "/api/reports/cumulative?category=Food", nil)

			sl.LogHTTPEnd(context.Background(), r, tt.status, 12, "10.0.0.1")
			entry := decodeLine(t, &buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry[FieldQuery] != "category=Food" {
				t.Errorf("query = %v", entry[FieldQuery])
			}
		})
	}
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentApp))

	sl.LogError(context.Background(), "report failed", errors.New("boom"), ComponentReport, OpReport, nil)
	entry := decodeLine(t, &buf)
	if entry[FieldError] != "boom" || entry[FieldOperation] != OpReport {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLogFields_WithReport(t *testing.T) {
	f := NewFields().WithReport("period", "Food", 0)
	if _, ok := f[FieldWeek]; ok {
		t.Error("a zero week should be omitted")
	}
	f = NewFields().WithReport("period", "Food", 4)
	if f[FieldWeek] != 4 || f[FieldReportKind] != "period" {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Error("ToSlice should emit key/value pairs")
	}
}
