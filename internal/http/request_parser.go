package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/services"
)

// maxBodyBytes bounds request bodies; a transaction is a handful of fields.
const maxBodyBytes = 64 << 10

// maxWeek is the highest week number either convention produces.
const maxWeek = 53

// RequestBodyParser reads a JSON or form-encoded body once and serves
// its fields as trimmed, sanitized strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	return p
}

// Parse decodes the body as JSON when it looks like JSON and as form data
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseTransaction reads date, amount, category and description from the
// request body and validates the result.
func parseTransaction(r *http.Request) (core.Transaction, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Transaction{}, newBadRequest("invalid request body")
	}

	var t core.Transaction
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, newBadRequest("invalid date, expected YYYY-MM-DD")
		}
		t.Date = d
	}
	if v := p.Get("amount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.Transaction{}, newBadRequest("invalid amount")
		}
		t.Amount = core.Money{Cents: cents}
	}
	t.Category = p.Get("category")
	t.Description = p.Get("description")
	return t, t.Validate()
}

// parseBudgetAmount reads a non-negative weekly budget. Zero clears a
// category's budget.
func parseBudgetAmount(r *http.Request) (core.Money, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Money{}, newBadRequest("invalid request body")
	}
	v := p.Get("amount")
	if v == "" {
		return core.Money{}, newBadRequest("amount is required")
	}
	cents, err := core.ParseSignedDecimalToCents(v)
	if err != nil || cents < 0 {
		return core.Money{}, newBadRequest("invalid amount")
	}
	return core.Money{Cents: cents}, nil
}

// parseRow reads the {row} path segment.
func parseRow(r *http.Request) (int, error) {
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil || row < 1 {
		return 0, newBadRequest("row must be a positive integer")
	}
	return row, nil
}

// parseListOptions reads category and limit from the query string.
func parseListOptions(query url.Values) (services.ListOptions, error) {
	limit, err := services.ParseLimit(query.Get("limit"))
	if err != nil {
		return services.ListOptions{}, newBadRequest("limit must be one of 5, 10, 15, 20 or All")
	}
	return services.ListOptions{
		Category: sanitizeInput(query.Get("category")),
		Limit:    limit,
	}, nil
}

// parseReportRequest builds an engine request from the query string.
// Cumulative and scorecard reports leave out future-dated rows unless
// exclude_future=false; period reports keep them unless asked otherwise.
func parseReportRequest(query url.Values, kind budget.ReportKind, now time.Time) (budget.Request, error) {
	req := budget.Request{
		Kind:          kind,
		Category:      sanitizeInput(query.Get("category")),
		ExcludeFuture: kind != budget.KindPeriod,
		Today:         now,
	}

	var err error
	if req.Week, err = parseWeek(query, "week"); err != nil {
		return budget.Request{}, err
	}
	if req.ReferenceWeek, err = parseWeek(query, "reference_week"); err != nil {
		return budget.Request{}, err
	}
	if v := strings.TrimSpace(query.Get("exclude_future")); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return budget.Request{}, newBadRequest("exclude_future must be true or false")
		}
		req.ExcludeFuture = b
	}
	if v := strings.TrimSpace(query.Get("today")); v != "" {
		d, perr := core.ParseDate(v)
		if perr != nil {
			return budget.Request{}, newBadRequest("today must be YYYY-MM-DD")
		}
		req.Today = d.Time
	}
	return req, nil
}

func parseWeek(query url.Values, key string) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxWeek {
		return 0, newBadRequest(fmt.Sprintf("%s must be between 1 and %d", key, maxWeek))
	}
	return n, nil
}
