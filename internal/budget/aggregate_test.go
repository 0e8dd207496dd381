package budget

import (
	"strconv"
	"testing"
	"time"

	"spendwise/internal/core"
)

func spendRow(week int, category, amount string, date core.Date) Record {
	return Record{
		WeekKey:    strconv.Itoa(week),
		WeekNumber: week,
		Category:   category,
		Amount:     dec(amount),
		Date:       date,
	}
}

func TestAggregate_ExcludesInitialisers(t *testing.T) {
	records := []Record{
		{WeekKey: "1", WeekNumber: 1, Category: "Food", Amount: dec("1000"), Budget: dec("50"), Description: "Initialise", IsInitialiser: true},
		spendRow(1, "Food", "20", core.Date{}),
	}
	s := Aggregate(records, Filter{Category: "All"})
	if !s.Week(1).Equal(dec("20")) || !s.Total.Equal(dec("20")) || s.Matched != 1 {
		t.Fatalf("initialiser amount leaked into sums: week1=%s total=%s matched=%d", s.Week(1), s.Total, s.Matched)
	}
}

func TestAggregate_FutureDates(t *testing.T) {
	today := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
	records := []Record{
		spendRow(2, "Food", "10", core.NewDate(2025, 1, 10)),
		spendRow(2, "Food", "15", core.NewDate(2025, 1, 11)),
		spendRow(2, "Food", "5", core.Date{}),
	}

	excluded := Aggregate(records, Filter{Category: "All", ExcludeFuture: true, Today: today})
	if !excluded.Week(2).Equal(dec("15")) {
		t.Fatalf("expected 15 with future rows excluded, got %s", excluded.Week(2))
	}

	included := Aggregate(records, Filter{Category: "All", Today: today})
	if !included.Week(2).Equal(dec("30")) {
		t.Fatalf("expected 30 with future rows included, got %s", included.Week(2))
	}
}

func TestAggregate_CategoryAndWeekFilters(t *testing.T) {
	records := []Record{
		spendRow(1, "Food", "20", core.Date{}),
		spendRow(1, "Fuel", "40", core.Date{}),
		spendRow(2, "Food", "30", core.Date{}),
	}

	food := Aggregate(records, Filter{Category: "Food"})
	if !food.Total.Equal(dec("50")) || !food.Week(1).Equal(dec("20")) {
		t.Fatalf("category filter: total=%s week1=%s", food.Total, food.Week(1))
	}

	week1 := Aggregate(records, Filter{Category: "All", Week: 1})
	if !week1.Total.Equal(dec("60")) || !week1.Week(2).IsZero() {
		t.Fatalf("week filter: total=%s week2=%s", week1.Total, week1.Week(2))
	}
	if !week1.WeekCategory(1, "Fuel").Equal(dec("40")) {
		t.Fatalf("expected Fuel week1=40, got %s", week1.WeekCategory(1, "Fuel"))
	}
	if !week1.WeekCategory(7, "Fuel").IsZero() {
		t.Fatal("missing bucket should read as zero")
	}
}

func TestAggregate_RawKeys(t *testing.T) {
	records := []Record{
		{WeekKey: "2025-W02", WeekNumber: 2, Category: "Food", Amount: dec("5")},
		{WeekKey: "2025-W01", WeekNumber: 1, Category: "Food", Amount: dec("7")},
		{WeekKey: "2025-W02", WeekNumber: 2, Category: "Food", Amount: dec("1")},
	}
	s := Aggregate(records, Filter{Category: "All"})
	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "2025-W02" || keys[1] != "2025-W01" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if !s.Key("2025-W02").Equal(dec("6")) {
		t.Fatalf("expected 6, got %s", s.Key("2025-W02"))
	}
}

func TestWeeklySpend_Through(t *testing.T) {
	records := []Record{
		spendRow(1, "Food", "1", core.Date{}),
		spendRow(2, "Food", "2", core.Date{}),
		spendRow(53, "Food", "4", core.Date{}),
	}
	s := Aggregate(records, Filter{Category: "All"})
	if got := s.Through(2); !got.Equal(dec("3")) {
		t.Fatalf("expected 3, got %s", got)
	}
	if got := s.Through(53); !got.Equal(dec("7")) {
		t.Fatalf("expected 7, got %s", got)
	}
	if got := s.Through(0); !got.IsZero() {
		t.Fatalf("expected 0, got %s", got)
	}
}
