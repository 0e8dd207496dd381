package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/sheets"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/3").
		Body(map[string]int{"row": 3}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", rr.Header().Get("Content-Type"))
	}
	if rr.Header().Get("Location") != "/api/transactions/3" {
		t.Fatal("missing Location header")
	}
	if got := rr.Body.String(); got != "{\"row\":3}\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rr)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestJSONResponseBuilder_UnencodableBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"f": func() {}}).Write(rr)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestErrorFor(t *testing.T) {
	storeErr := sheets.Wrap("read", "Analytics!A:F", errors.New("403 forbidden"))
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", newBadRequest("nope"), http.StatusBadRequest},
		{"parse", fmt.Errorf("wrap: %w", &budget.ParseError{Missing: []string{"WeekNum"}}), http.StatusUnprocessableEntity},
		{"no data", &budget.NoDataError{Rows: 1}, http.StatusNotFound},
		{"validation", &budget.ValidationError{Kind: budget.KindPeriod, Category: "Travel"}, http.StatusNotFound},
		{"row in store error", sheets.Wrap("update", "Tracker_Sheet!A9:D9", core.ErrInvalidRowNumber), http.StatusNotFound},
		{"domain validation", core.ErrMissingDate, http.StatusBadRequest},
		{"timeout", fmt.Errorf("read analytics: %w", sheets.Wrap("read", "", context.DeadlineExceeded)), http.StatusGatewayTimeout},
		{"store", fmt.Errorf("read analytics: %w", storeErr), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			ErrorFor(tt.err).Write(rr)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
