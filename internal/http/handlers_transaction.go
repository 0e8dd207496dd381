package http

import (
	"net/http"
	"strconv"
	"sync/atomic"

	"spendwise/internal/core"
	applog "spendwise/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpList, err, nil)
		return
	}
	rows, err := s.transactions.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, applog.OpList, err, nil)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"transactions": newTransactionViews(rows),
		"count":        len(rows),
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.readTransaction(r)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err, nil)
		return
	}
	row, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err, transactionFields(0, t))
		return
	}

	s.recordWrite(r, applog.OpCreate, row, t)
	resp := NewJSONResponse().Status(http.StatusCreated)
	if row > 0 {
		resp.Header("Location", "/api/transactions/"+strconv.Itoa(row))
	}
	resp.Body(newTransactionView(core.LoggedTransaction{Row: row, Transaction: t})).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	row, err := parseRow(r)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err, nil)
		return
	}
	t, err := s.readTransaction(r)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err, nil)
		return
	}
	if err := s.transactions.Update(r.Context(), row, t); err != nil {
		s.writeError(w, r, applog.OpUpdate, err, transactionFields(row, t))
		return
	}

	s.recordWrite(r, applog.OpUpdate, row, t)
	NewJSONResponse().Body(newTransactionView(core.LoggedTransaction{Row: row, Transaction: t})).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	row, err := parseRow(r)
	if err != nil {
		s.writeError(w, r, applog.OpDelete, err, nil)
		return
	}
	if err := s.transactions.Delete(r.Context(), row); err != nil {
		s.writeError(w, r, applog.OpDelete, err, applog.NewFields().WithTransaction(row, 0, "", ""))
		return
	}

	s.recordWrite(r, applog.OpDelete, row, core.Transaction{})
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleSetBudget serves PUT /api/budgets/{category}. Only stores that
// keep budgets outside the analytics table support it.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if s.budgets == nil {
		ErrorResponse(http.StatusNotImplemented, "not_supported",
			"this store keeps budgets in the analytics sheet").Write(w)
		return
	}
	category := sanitizeInput(r.PathValue("category"))
	if !knownCategory(s.categories, category) {
		BadRequestError("unknown category " + strconv.Quote(category)).Write(w)
		return
	}
	amount, err := parseBudgetAmount(r)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err, nil)
		return
	}
	if err := s.budgets.SetWeeklyBudget(r.Context(), category, amount); err != nil {
		s.writeError(w, r, applog.OpUpdate, err, applog.NewFields().WithReport("budget", category, 0))
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Weekly budget set",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldCategory, category,
		applog.FieldAmountCents, amount.Cents)
	NewJSONResponse().Body(map[string]string{
		"category":      category,
		"weekly_budget": amount.String(),
	}).Write(w)
}

// readTransaction parses the body and checks the category against the
// catalogue.
func (s *Server) readTransaction(r *http.Request) (core.Transaction, error) {
	t, err := parseTransaction(r)
	if err != nil {
		return core.Transaction{}, err
	}
	if !knownCategory(s.categories, t.Category) {
		return core.Transaction{}, newBadRequest("unknown category " + strconv.Quote(t.Category))
	}
	return t, nil
}

func (s *Server) recordWrite(r *http.Request, op string, row int, t core.Transaction) {
	atomic.AddInt64(&s.appMetrics.transactionsWritten, 1)
	s.structured.LogTransactionLogged(r.Context(), op, row, t.Amount.Cents, t.Category, t.Description)
}

func transactionFields(row int, t core.Transaction) applog.LogFields {
	return applog.NewFields().WithTransaction(row, t.Amount.Cents, t.Category, t.Description)
}
