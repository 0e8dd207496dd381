package budget

import (
	"spendwise/internal/core"

	"github.com/shopspring/decimal"
)

// ResolutionMode names how repeated initialiser rows combine.
type ResolutionMode string

const (
	// ModeAdditive sums every positive initialiser budget. Used for "All".
	ModeAdditive ResolutionMode = "additive"
	// ModeLastWins keeps the last initialiser budget seen for a category.
	ModeLastWins ResolutionMode = "last-wins"
)

// ModeFor returns the resolution mode applied to a category selector.
// The two modes disagree when a category is initialised more than once;
// historical reports depend on that, so they are kept distinct.
func ModeFor(category string) ResolutionMode {
	if core.IsAllCategories(category) {
		return ModeAdditive
	}
	return ModeLastWins
}

// ResolveBudget returns the weekly budget for a category selector.
func ResolveBudget(records []Record, category string) decimal.Decimal {
	if ModeFor(category) == ModeAdditive {
		return ResolveAdditive(records)
	}
	return ResolveLastWins(records, category)
}

// ResolveAdditive sums the budget of every initialiser row with a positive
// budget, whichever category it names.
func ResolveAdditive(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.IsInitialiser && r.Budget.IsPositive() {
			total = total.Add(r.Budget)
		}
	}
	return total
}

// ResolveLastWins returns the budget of the last initialiser row for the
// category that carries a positive budget. Blank or non-positive rows
// leave the earlier budget in place.
func ResolveLastWins(records []Record, category string) decimal.Decimal {
	budget := decimal.Zero
	for _, r := range records {
		if r.IsInitialiser && r.Category == category && r.Budget.IsPositive() {
			budget = r.Budget
		}
	}
	return budget
}

// BudgetMap holds the last-wins budget of every initialised category in
// first-encounter order.
type BudgetMap struct {
	order   []string
	budgets map[string]decimal.Decimal
}

// BuildBudgetMap scans the initialiser rows once. Rows without a category
// name cannot be scored and are skipped; unlike ResolveLastWins, a later
// row overwrites the budget whatever its value.
func BuildBudgetMap(records []Record) *BudgetMap {
	m := &BudgetMap{budgets: make(map[string]decimal.Decimal)}
	for _, r := range records {
		if !r.IsInitialiser || r.Category == "" {
			continue
		}
		if _, seen := m.budgets[r.Category]; !seen {
			m.order = append(m.order, r.Category)
		}
		m.budgets[r.Category] = nonNegative(r.Budget)
	}
	return m
}

// Get returns the budget for a category.
func (m *BudgetMap) Get(category string) (decimal.Decimal, bool) {
	b, ok := m.budgets[category]
	return b, ok
}

// Categories returns initialised categories in encounter order.
func (m *BudgetMap) Categories() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of initialised categories.
func (m *BudgetMap) Len() int { return len(m.order) }

// Total sums the per-category budgets. It differs from ResolveAdditive
// when a category is initialised more than once.
func (m *BudgetMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range m.order {
		total = total.Add(m.budgets[c])
	}
	return total
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
