package budget

import (
	"fmt"
	"time"

	"spendwise/internal/core"
)

// ReportKind tags a report request.
type ReportKind string

const (
	KindCumulative ReportKind = "cumulative"
	KindPeriod     ReportKind = "period"
	KindScorecard  ReportKind = "scorecard"
)

// ParseReportKind validates a report kind name.
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case KindCumulative, KindPeriod, KindScorecard:
		return k, nil
	}
	return "", fmt.Errorf("unknown report kind: %q", s)
}

// Request is an immutable report request.
type Request struct {
	Kind ReportKind
	// Category is a category name or "All". Empty means "All".
	Category string
	// Week filters a period report to one week, or selects the scorecard
	// week. Zero means unfiltered / the reference week.
	Week int
	// ReferenceWeek is the "current" week for to-date metrics. Zero means
	// the week containing Today under the engine's convention.
	ReferenceWeek int
	ExcludeFuture bool
	Today         time.Time
}

// Result holds exactly one report, selected by Kind.
type Result struct {
	Kind          ReportKind
	Category      string
	ReferenceWeek int
	// Dropped counts table rows without a usable week number or category.
	Dropped    int
	Cumulative *CumulativeReport
	Period     *PeriodReport
	Scorecard  *Scorecard
}

// Engine builds reports from an analytics table snapshot. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	convention WeekConvention
	weeks      WeekNumberer
	now        func() time.Time
}

// NewEngine returns an engine that derives reference weeks with c.
func NewEngine(c WeekConvention) (*Engine, error) {
	weeks, err := WeekNumbererFor(c)
	if err != nil {
		return nil, err
	}
	return &Engine{convention: c, weeks: weeks, now: time.Now}, nil
}

// Convention returns the engine's week convention.
func (e *Engine) Convention() WeekConvention { return e.convention }

// CurrentWeek returns the week number containing t.
func (e *Engine) CurrentWeek(t time.Time) int { return e.weeks.WeekOf(t) }

// Build parses raw and produces the requested report.
func (e *Engine) Build(raw core.RawTable, req Request) (Result, error) {
	table, err := ParseTable(raw)
	if err != nil {
		return Result{}, err
	}
	return e.BuildFromTable(table, req)
}

// BuildFromTable produces the requested report from an already parsed table.
func (e *Engine) BuildFromTable(table *Table, req Request) (Result, error) {
	if req.Category == "" {
		req.Category = core.AllCategories
	}
	if req.Today.IsZero() {
		req.Today = e.now()
	}
	if req.ReferenceWeek == 0 {
		req.ReferenceWeek = e.CurrentWeek(req.Today)
	}

	res := Result{
		Kind:          req.Kind,
		Category:      req.Category,
		ReferenceWeek: req.ReferenceWeek,
		Dropped:       table.Dropped,
	}

	switch req.Kind {
	case KindCumulative:
		spend := Aggregate(table.Records, Filter{
			Category:      req.Category,
			ExcludeFuture: req.ExcludeFuture,
			Today:         req.Today,
		})
		weekly := ResolveBudget(table.Records, req.Category)
		if spend.Matched == 0 && weekly.IsZero() {
			return Result{}, &ValidationError{Kind: req.Kind, Category: req.Category}
		}
		report := BuildCumulative(spend, weekly, req.ReferenceWeek)
		report.Category = req.Category
		res.Cumulative = &report

	case KindPeriod:
		spend := Aggregate(table.Records, Filter{
			Category:      req.Category,
			Week:          req.Week,
			ExcludeFuture: req.ExcludeFuture,
			Today:         req.Today,
		})
		report := BuildPeriod(spend, ResolveBudget(table.Records, req.Category))
		if len(report.Points) == 0 {
			return Result{}, &ValidationError{Kind: req.Kind, Category: req.Category, Week: req.Week}
		}
		report.Category = req.Category
		report.Week = req.Week
		res.Period = &report

	case KindScorecard:
		week := req.Week
		if week <= 0 {
			week = req.ReferenceWeek
		}
		spend := Aggregate(table.Records, Filter{
			Category:      core.AllCategories,
			ExcludeFuture: req.ExcludeFuture,
			Today:         req.Today,
		})
		report := BuildScorecard(spend, BuildBudgetMap(table.Records), week)
		if report.TotalCategories == 0 {
			return Result{}, &ValidationError{Kind: req.Kind, Week: week}
		}
		res.Scorecard = &report

	default:
		return Result{}, fmt.Errorf("unknown report kind: %q", req.Kind)
	}
	return res, nil
}
