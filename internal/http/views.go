package http

import (
	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/services"

	"github.com/shopspring/decimal"
)

// Amounts and percentages are sent as two-decimal strings so clients never
// see binary floating point.
func fixed(d decimal.Decimal) string { return d.StringFixed(2) }

type transactionView struct {
	Row         int    `json:"row"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func newTransactionView(t core.LoggedTransaction) transactionView {
	return transactionView{
		Row:         t.Row,
		Date:        t.Date.String(),
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Description: t.Description,
	}
}

func newTransactionViews(ts []core.LoggedTransaction) []transactionView {
	out := make([]transactionView, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTransactionView(t))
	}
	return out
}

type cumulativePointView struct {
	Week             int    `json:"week"`
	Label            string `json:"label"`
	WeekSpend        string `json:"week_spend"`
	CumulativeSpend  string `json:"cumulative_spend"`
	CumulativeBudget string `json:"cumulative_budget"`
	OverBudget       bool   `json:"over_budget"`
}

type cumulativeMetricsView struct {
	CurrentWeek        int    `json:"current_week"`
	WeeklyBudget       string `json:"weekly_budget"`
	TotalSpendToDate   string `json:"total_spend_to_date"`
	TotalBudgetToDate  string `json:"total_budget_to_date"`
	Delta              string `json:"delta"`
	AverageWeeklySpend string `json:"average_weekly_spend"`
	WeeklyDelta        string `json:"weekly_delta"`
}

type cumulativeView struct {
	Category string                `json:"category"`
	Metrics  cumulativeMetricsView `json:"metrics"`
	Points   []cumulativePointView `json:"points"`
}

func newCumulativeView(c *budget.CumulativeReport) *cumulativeView {
	if c == nil {
		return nil
	}
	m := c.Metrics
	v := &cumulativeView{
		Category: c.Category,
		Metrics: cumulativeMetricsView{
			CurrentWeek:        m.CurrentWeek,
			WeeklyBudget:       fixed(m.WeeklyBudget),
			TotalSpendToDate:   fixed(m.TotalSpendToDate),
			TotalBudgetToDate:  fixed(m.TotalBudgetToDate),
			Delta:              fixed(m.Delta),
			AverageWeeklySpend: fixed(m.AverageWeeklySpend),
			WeeklyDelta:        fixed(m.WeeklyDelta),
		},
		Points: make([]cumulativePointView, 0, len(c.Points)),
	}
	for _, p := range c.Points {
		v.Points = append(v.Points, cumulativePointView{
			Week:             p.Week,
			Label:            p.Label,
			WeekSpend:        fixed(p.WeekSpend),
			CumulativeSpend:  fixed(p.CumulativeSpend),
			CumulativeBudget: fixed(p.CumulativeBudget),
			OverBudget:       p.OverBudget,
		})
	}
	return v
}

type periodPointView struct {
	WeekKey string `json:"week_key"`
	Week    int    `json:"week"`
	Amount  string `json:"amount"`
	Budget  string `json:"budget"`
}

type periodView struct {
	Category     string            `json:"category"`
	Week         int               `json:"week,omitempty"`
	WeeklyBudget string            `json:"weekly_budget"`
	Total        string            `json:"total"`
	Points       []periodPointView `json:"points"`
}

func newPeriodView(p *budget.PeriodReport) *periodView {
	if p == nil {
		return nil
	}
	v := &periodView{
		Category:     p.Category,
		Week:         p.Week,
		WeeklyBudget: fixed(p.WeeklyBudget),
		Total:        fixed(p.Total),
		Points:       make([]periodPointView, 0, len(p.Points)),
	}
	for _, pt := range p.Points {
		v.Points = append(v.Points, periodPointView{
			WeekKey: pt.WeekKey,
			Week:    pt.Week,
			Amount:  fixed(pt.Amount),
			Budget:  fixed(pt.Budget),
		})
	}
	return v
}

type scoreRowView struct {
	Category    string `json:"category"`
	ThisWeek    string `json:"this_week"`
	LastWeek    string `json:"last_week"`
	Budget      string `json:"budget"`
	PercentUsed string `json:"percent_used"`
	BarWidth    string `json:"bar_width"`
	Status      string `json:"status"`
	OnTrack     bool   `json:"on_track"`
}

type scorecardView struct {
	Week              int            `json:"week"`
	TotalThisWeek     string         `json:"total_this_week"`
	TotalLastWeek     string         `json:"total_last_week"`
	TotalBudget       string         `json:"total_budget"`
	TotalDelta        string         `json:"total_delta"`
	PercentChange     string         `json:"percent_change"`
	PercentOfBudget   string         `json:"percent_of_budget"`
	CategoriesOnTrack int            `json:"categories_on_track"`
	TotalCategories   int            `json:"total_categories"`
	OnTrack           bool           `json:"on_track"`
	ChartScale        string         `json:"chart_scale"`
	Rows              []scoreRowView `json:"rows"`
}

func newScorecardView(sc *budget.Scorecard) *scorecardView {
	if sc == nil {
		return nil
	}
	v := &scorecardView{
		Week:              sc.Week,
		TotalThisWeek:     fixed(sc.TotalThisWeek),
		TotalLastWeek:     fixed(sc.TotalLastWeek),
		TotalBudget:       fixed(sc.TotalBudget),
		TotalDelta:        fixed(sc.TotalDelta),
		PercentChange:     fixed(sc.PercentChange),
		PercentOfBudget:   fixed(sc.PercentOfBudget),
		CategoriesOnTrack: sc.CategoriesOnTrack,
		TotalCategories:   sc.TotalCategories,
		OnTrack:           sc.OnTrack,
		ChartScale:        fixed(sc.ChartScale),
		Rows:              make([]scoreRowView, 0, len(sc.Rows)),
	}
	for _, r := range sc.Rows {
		v.Rows = append(v.Rows, scoreRowView{
			Category:    r.Category,
			ThisWeek:    fixed(r.ThisWeek),
			LastWeek:    fixed(r.LastWeek),
			Budget:      fixed(r.Budget),
			PercentUsed: fixed(r.PercentUsed),
			BarWidth:    fixed(r.BarWidth),
			Status:      string(r.Status),
			OnTrack:     r.OnTrack,
		})
	}
	return v
}

type reportView struct {
	Kind          string          `json:"kind"`
	Category      string          `json:"category"`
	ReferenceWeek int             `json:"reference_week"`
	DroppedRows   int             `json:"dropped_rows"`
	Cumulative    *cumulativeView `json:"cumulative,omitempty"`
	Period        *periodView     `json:"period,omitempty"`
	Scorecard     *scorecardView  `json:"scorecard,omitempty"`
}

func newReportView(res budget.Result) reportView {
	return reportView{
		Kind:          string(res.Kind),
		Category:      res.Category,
		ReferenceWeek: res.ReferenceWeek,
		DroppedRows:   res.Dropped,
		Cumulative:    newCumulativeView(res.Cumulative),
		Period:        newPeriodView(res.Period),
		Scorecard:     newScorecardView(res.Scorecard),
	}
}

type dashboardView struct {
	ReferenceWeek int               `json:"reference_week"`
	Cumulative    *cumulativeView   `json:"cumulative"`
	Scorecard     *scorecardView    `json:"scorecard"`
	Recent        []transactionView `json:"recent"`
}

func newDashboardView(d services.Dashboard) dashboardView {
	return dashboardView{
		ReferenceWeek: d.ReferenceWeek,
		Cumulative:    newCumulativeView(d.Cumulative),
		Scorecard:     newScorecardView(d.Scorecard),
		Recent:        newTransactionViews(d.Recent),
	}
}
