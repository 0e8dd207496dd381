package budget

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PeriodPoint is one week that had matching spend.
type PeriodPoint struct {
	WeekKey string
	Week    int
	SortKey int
	Amount  decimal.Decimal
	Budget  decimal.Decimal
}

// PeriodReport pairs per-week totals with a flat budget line.
type PeriodReport struct {
	Category     string
	Week         int
	WeeklyBudget decimal.Decimal
	Points       []PeriodPoint
	Total        decimal.Decimal
}

// BuildPeriod reports only the week keys present in spend, ascending by
// WeekSortKey. Keys sharing a sort key keep their encounter order.
func BuildPeriod(spend *WeeklySpend, weeklyBudget decimal.Decimal) PeriodReport {
	keys := spend.Keys()
	points := make([]PeriodPoint, 0, len(keys))
	for _, k := range keys {
		week, _ := TrailingWeekNumber(k)
		points = append(points, PeriodPoint{
			WeekKey: k,
			Week:    week,
			SortKey: WeekSortKey(k),
			Amount:  spend.Key(k),
			Budget:  weeklyBudget,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].SortKey < points[j].SortKey
	})
	return PeriodReport{
		WeeklyBudget: weeklyBudget,
		Points:       points,
		Total:        spend.Total,
	}
}
