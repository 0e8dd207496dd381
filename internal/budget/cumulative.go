package budget

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// WeeksPerYear is the length of the cumulative series.
const WeeksPerYear = 52

// CumulativePoint is one week of the cumulative series.
type CumulativePoint struct {
	Week             int
	Label            string
	WeekSpend        decimal.Decimal
	CumulativeSpend  decimal.Decimal
	CumulativeBudget decimal.Decimal
	OverBudget       bool
}

// CumulativeMetrics are the to-date scalars of a cumulative report.
type CumulativeMetrics struct {
	CurrentWeek        int
	WeeklyBudget       decimal.Decimal
	TotalSpendToDate   decimal.Decimal
	TotalBudgetToDate  decimal.Decimal
	Delta              decimal.Decimal
	AverageWeeklySpend decimal.Decimal
	WeeklyDelta        decimal.Decimal
}

// CumulativeReport tracks running spend against a linear budget projection.
type CumulativeReport struct {
	Category string
	Points   []CumulativePoint
	Metrics  CumulativeMetrics
}

// BuildCumulative produces all 52 weeks whether or not they have data.
// Refunds (negative amounts) can make the running spend decrease.
func BuildCumulative(spend *WeeklySpend, weeklyBudget decimal.Decimal, currentWeek int) CumulativeReport {
	points := make([]CumulativePoint, 0, WeeksPerYear)
	running := decimal.Zero
	for week := 1; week <= WeeksPerYear; week++ {
		weekSpend := spend.Week(week)
		running = running.Add(weekSpend)
		target := weeklyBudget.Mul(decimal.NewFromInt(int64(week)))
		points = append(points, CumulativePoint{
			Week:             week,
			Label:            "W" + strconv.Itoa(week),
			WeekSpend:        weekSpend,
			CumulativeSpend:  running,
			CumulativeBudget: target,
			OverBudget:       running.GreaterThan(target),
		})
	}

	m := CumulativeMetrics{
		CurrentWeek:        currentWeek,
		WeeklyBudget:       weeklyBudget,
		TotalSpendToDate:   decimal.Zero,
		TotalBudgetToDate:  decimal.Zero,
		AverageWeeklySpend: decimal.Zero,
	}
	if currentWeek > 0 {
		weeks := decimal.NewFromInt(int64(currentWeek))
		m.TotalSpendToDate = spend.Through(currentWeek)
		m.TotalBudgetToDate = weeklyBudget.Mul(weeks)
		m.AverageWeeklySpend = m.TotalSpendToDate.Div(weeks)
	}
	m.Delta = m.TotalSpendToDate.Sub(m.TotalBudgetToDate)
	m.WeeklyDelta = m.AverageWeeklySpend.Sub(weeklyBudget)

	return CumulativeReport{Points: points, Metrics: m}
}
