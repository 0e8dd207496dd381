package budget

import (
	"time"

	"spendwise/internal/core"

	"github.com/shopspring/decimal"
)

// Filter selects which spending records an aggregation counts.
type Filter struct {
	// Category is a category name or "All".
	Category string
	// Week restricts aggregation to one week number. Zero means every week.
	Week int
	// ExcludeFuture drops records dated after Today's calendar day.
	// Undated records are always kept.
	ExcludeFuture bool
	Today         time.Time
}

type weekCategory struct {
	week     int
	category string
}

// WeeklySpend holds the buckets of one aggregation pass. Missing buckets
// read as zero.
type WeeklySpend struct {
	byWeek         map[int]decimal.Decimal
	byWeekCategory map[weekCategory]decimal.Decimal
	byKey          map[string]decimal.Decimal
	keys           []string

	Total   decimal.Decimal
	Matched int
}

// Aggregate sums the non-initialiser records that pass the filter by week,
// by (week, category) and by raw week key.
func Aggregate(records []Record, f Filter) *WeeklySpend {
	s := &WeeklySpend{
		byWeek:         make(map[int]decimal.Decimal),
		byWeekCategory: make(map[weekCategory]decimal.Decimal),
		byKey:          make(map[string]decimal.Decimal),
		Total:          decimal.Zero,
	}

	var today time.Time
	if f.ExcludeFuture {
		today = calendarDay(f.Today)
	}

	for _, r := range records {
		if r.IsInitialiser {
			continue
		}
		if f.ExcludeFuture && r.HasDate() && r.Date.After(today) {
			continue
		}
		if !core.IsAllCategories(f.Category) && r.Category != f.Category {
			continue
		}
		if f.Week > 0 && r.WeekNumber != f.Week {
			continue
		}

		s.byWeek[r.WeekNumber] = s.byWeek[r.WeekNumber].Add(r.Amount)
		wc := weekCategory{week: r.WeekNumber, category: r.Category}
		s.byWeekCategory[wc] = s.byWeekCategory[wc].Add(r.Amount)
		if _, seen := s.byKey[r.WeekKey]; !seen {
			s.keys = append(s.keys, r.WeekKey)
		}
		s.byKey[r.WeekKey] = s.byKey[r.WeekKey].Add(r.Amount)
		s.Total = s.Total.Add(r.Amount)
		s.Matched++
	}
	return s
}

// Week returns the summed amount for a week number.
func (s *WeeklySpend) Week(n int) decimal.Decimal {
	return s.byWeek[n]
}

// WeekCategory returns the summed amount for a category in a week.
func (s *WeeklySpend) WeekCategory(n int, category string) decimal.Decimal {
	return s.byWeekCategory[weekCategory{week: n, category: category}]
}

// Key returns the summed amount for a raw week key.
func (s *WeeklySpend) Key(key string) decimal.Decimal {
	return s.byKey[key]
}

// Keys returns the raw week keys seen, in encounter order.
func (s *WeeklySpend) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Through sums every week from 1 to n inclusive.
func (s *WeeklySpend) Through(n int) decimal.Decimal {
	total := decimal.Zero
	for week, amount := range s.byWeek {
		if week >= 1 && week <= n {
			total = total.Add(amount)
		}
	}
	return total
}
