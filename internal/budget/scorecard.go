package budget

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ScoreStatus classifies how much of its budget a category has used.
type ScoreStatus string

const (
	StatusGood ScoreStatus = "good"
	StatusNear ScoreStatus = "near"
	StatusOver ScoreStatus = "over"
)

var (
	hundred     = decimal.NewFromInt(100)
	twenty      = decimal.NewFromInt(20)
	nearPercent = decimal.NewFromInt(80)
)

// CategoryScore is one scorecard row.
type CategoryScore struct {
	Category    string
	ThisWeek    decimal.Decimal
	LastWeek    decimal.Decimal
	Budget      decimal.Decimal
	PercentUsed decimal.Decimal
	// BarWidth is PercentUsed rescaled to the chart scale, 0-100.
	BarWidth decimal.Decimal
	Status   ScoreStatus
	OnTrack  bool
}

// Scorecard compares a week's spend with the previous week and with budget.
type Scorecard struct {
	Week              int
	Rows              []CategoryScore
	TotalThisWeek     decimal.Decimal
	TotalLastWeek     decimal.Decimal
	TotalBudget       decimal.Decimal
	TotalDelta        decimal.Decimal
	PercentChange     decimal.Decimal
	PercentOfBudget   decimal.Decimal
	CategoriesOnTrack int
	TotalCategories   int
	OnTrack           bool
	ChartScale        decimal.Decimal
}

// BuildScorecard scores every category with a positive budget for week.
// spend must be an unfiltered aggregation so that every category's buckets
// are available.
func BuildScorecard(spend *WeeklySpend, budgets *BudgetMap, week int) Scorecard {
	sc := Scorecard{
		Week:            week,
		TotalThisWeek:   decimal.Zero,
		TotalLastWeek:   decimal.Zero,
		TotalBudget:     decimal.Zero,
		PercentChange:   decimal.Zero,
		PercentOfBudget: decimal.Zero,
	}

	for _, category := range budgets.Categories() {
		budget, _ := budgets.Get(category)
		if !budget.IsPositive() {
			continue
		}
		thisWeek := spend.WeekCategory(week, category)
		lastWeek := decimal.Zero
		if week-1 >= 1 {
			lastWeek = spend.WeekCategory(week-1, category)
		}
		percent := thisWeek.Div(budget).Mul(hundred)
		onTrack := thisWeek.LessThanOrEqual(budget)

		sc.Rows = append(sc.Rows, CategoryScore{
			Category:    category,
			ThisWeek:    thisWeek,
			LastWeek:    lastWeek,
			Budget:      budget,
			PercentUsed: percent,
			Status:      statusFor(percent),
			OnTrack:     onTrack,
		})
		sc.TotalThisWeek = sc.TotalThisWeek.Add(thisWeek)
		sc.TotalLastWeek = sc.TotalLastWeek.Add(lastWeek)
		sc.TotalBudget = sc.TotalBudget.Add(budget)
		if onTrack {
			sc.CategoriesOnTrack++
		}
	}
	sc.TotalCategories = len(sc.Rows)

	sort.SliceStable(sc.Rows, func(i, j int) bool {
		return sc.Rows[i].PercentUsed.GreaterThan(sc.Rows[j].PercentUsed)
	})

	sc.TotalDelta = sc.TotalThisWeek.Sub(sc.TotalLastWeek)
	if !sc.TotalLastWeek.IsZero() {
		sc.PercentChange = sc.TotalDelta.Div(sc.TotalLastWeek).Mul(hundred)
	}
	if sc.TotalBudget.IsPositive() {
		sc.PercentOfBudget = sc.TotalThisWeek.Div(sc.TotalBudget).Mul(hundred)
	}
	sc.OnTrack = sc.TotalBudget.GreaterThanOrEqual(sc.TotalThisWeek)

	maxPercent := decimal.Zero
	for _, r := range sc.Rows {
		if r.PercentUsed.GreaterThan(maxPercent) {
			maxPercent = r.PercentUsed
		}
	}
	sc.ChartScale = ChartScale(maxPercent)
	for i := range sc.Rows {
		sc.Rows[i].BarWidth = BarWidth(sc.Rows[i].PercentUsed, sc.ChartScale)
	}
	return sc
}

// ChartScale is the smallest multiple of 20, at least 100, that is not
// below maxPercent.
func ChartScale(maxPercent decimal.Decimal) decimal.Decimal {
	scale := maxPercent.Div(twenty).Ceil().Mul(twenty)
	if scale.LessThan(hundred) {
		return hundred
	}
	return scale
}

// BarWidth rescales a percentage onto a 0-100 track of the given scale.
func BarWidth(percent, scale decimal.Decimal) decimal.Decimal {
	if !scale.IsPositive() {
		return decimal.Zero
	}
	w := percent.Div(scale).Mul(hundred)
	if w.IsNegative() {
		return decimal.Zero
	}
	if w.GreaterThan(hundred) {
		return hundred
	}
	return w
}

func statusFor(percent decimal.Decimal) ScoreStatus {
	switch {
	case percent.GreaterThan(hundred):
		return StatusOver
	case percent.GreaterThanOrEqual(nearPercent):
		return StatusNear
	default:
		return StatusGood
	}
}
