package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/sheets"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body sends no
// content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"internal_error","message":"encoding failed"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, errType, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: errorDetail{Type: errType, Message: message}})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, applog.ErrorTypeValidation, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, applog.ErrorTypeNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, applog.ErrorTypeInternal, message)
}

// badRequest marks request-parsing failures.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func newBadRequest(msg string) error { return &badRequest{msg: msg} }

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyCategory,
	core.ErrMissingDate,
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrDescriptionLong,
}

// ErrorFor maps an error from the services onto a response. Row errors are
// checked before store errors because stores wrap them.
func ErrorFor(err error) *JSONResponseBuilder {
	var (
		badReq   *badRequest
		parseErr *budget.ParseError
		noData   *budget.NoDataError
		invalid  *budget.ValidationError
		storeErr *sheets.StoreError
	)
	switch {
	case errors.As(err, &badReq):
		return BadRequestError(badReq.msg)
	case errors.As(err, &parseErr):
		return ErrorResponse(http.StatusUnprocessableEntity, applog.ErrorTypeParse, parseErr.Error())
	case errors.As(err, &noData):
		return ErrorResponse(http.StatusNotFound, applog.ErrorTypeNoData, noData.Error())
	case errors.As(err, &invalid):
		return NotFoundError(invalid.Error())
	case errors.Is(err, core.ErrInvalidRowNumber):
		return NotFoundError("no transaction at that row")
	case isValidationError(err):
		return BadRequestError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse(http.StatusGatewayTimeout, applog.ErrorTypeNetwork, "transaction store timed out")
	case errors.As(err, &storeErr):
		return ErrorResponse(http.StatusBadGateway, applog.ErrorTypeNetwork, "transaction store unavailable")
	default:
		return InternalServerError("internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError logs err at a level matching its response and writes it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error, fields applog.LogFields) {
	resp := ErrorFor(err)
	ctx := r.Context()
	if resp.statusCode >= http.StatusInternalServerError {
		s.structured.LogError(ctx, "Request failed", err, applog.ComponentHTTP, op, fields)
	} else {
		if fields == nil {
			fields = applog.NewFields()
		}
		applog.FromContext(ctx).WarnContext(ctx, "Request rejected",
			fields.WithError(err).WithOperation(op).WithComponent(applog.ComponentHTTP).ToSlice()...)
	}
	resp.Write(w)
}
