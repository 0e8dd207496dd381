// Package budget is the weekly budget aggregation and reporting engine.
//
// This file implements the Strategy Pattern for week numbering. Budget rows
// are keyed by a week number, and the convention used to derive "the
// current week" must be the same one the rows were keyed against, so every
// caller selects a convention explicitly instead of relying on a default.
package budget

import (
	"fmt"
	"strings"
	"time"
)

// WeekConvention names a date-to-week-number strategy.
type WeekConvention string

const (
	// ConventionISO numbers weeks by the Thursday of their Monday-Sunday span.
	ConventionISO WeekConvention = "iso"
	// ConventionMondayAnchored starts week 1 on January 1 and week 2 on the
	// first Monday of the year.
	ConventionMondayAnchored WeekConvention = "monday"
)

// WeekNumberer is the strategy interface for mapping a date to a week number.
type WeekNumberer interface {
	// WeekOf returns the 1-based week number of the date's calendar day.
	WeekOf(t time.Time) int
}

// ISOWeeks implements WeekNumberer with ISO-8601 numbering.
type ISOWeeks struct{}

// WeekOf shifts the date to the Thursday of its week and counts weeks from
// January 1 of that Thursday's year. Dates near a year boundary may belong to
// week 52/53 of the previous year or week 1 of the next.
func (ISOWeeks) WeekOf(t time.Time) int {
	day := calendarDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := day.AddDate(0, 0, 4-weekday)
	return (thursday.YearDay() + 6) / 7
}

// WeekKey formats the year-qualified week key of t, e.g. "2025-W07". The
// year is the one the week belongs to: the Thursday's year under ISO
// numbering, the calendar year otherwise.
func WeekKey(w WeekNumberer, t time.Time) string {
	day := calendarDay(t)
	year := day.Year()
	if _, ok := w.(ISOWeeks); ok {
		year, _ = day.ISOWeek()
	}
	return fmt.Sprintf("%04d-W%02d", year, w.WeekOf(day))
}

// MondayAnchoredWeeks implements WeekNumberer with week 1 running from
// January 1 up to the day before the first Monday.
type MondayAnchoredWeeks struct{}

// WeekOf returns 1 for the leading partial week and counts 7-day spans from
// the first Monday afterwards. When January 1 is a Monday the first span is
// a full week. Late December can reach week 53 or 54.
func (MondayAnchoredWeeks) WeekOf(t time.Time) int {
	day := calendarDay(t)
	jan1 := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var daysToFirstMonday int
	switch jan1.Weekday() {
	case time.Monday:
		daysToFirstMonday = 7
	case time.Sunday:
		daysToFirstMonday = 1
	default:
		daysToFirstMonday = 8 - int(jan1.Weekday())
	}

	days := day.YearDay() - 1
	if days < daysToFirstMonday {
		return 1
	}
	return (days-daysToFirstMonday)/7 + 2
}

// calendarDay drops the clock and zone, keeping the wall-clock date.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekNumberers maps conventions to their strategies.
var weekNumberers = map[WeekConvention]WeekNumberer{
	ConventionISO:            ISOWeeks{},
	ConventionMondayAnchored: MondayAnchoredWeeks{},
}

// WeekNumbererFor returns the strategy for a convention.
func WeekNumbererFor(c WeekConvention) (WeekNumberer, error) {
	n, ok := weekNumberers[c]
	if !ok {
		return nil, fmt.Errorf("unknown week convention: %q", c)
	}
	return n, nil
}

// WeekNumber maps a date to its week number under the given convention.
func WeekNumber(t time.Time, c WeekConvention) (int, error) {
	n, err := WeekNumbererFor(c)
	if err != nil {
		return 0, err
	}
	return n.WeekOf(t), nil
}

// ParseWeekConvention reads a convention name as it appears in configuration.
func ParseWeekConvention(s string) (WeekConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iso", "iso8601", "iso-8601":
		return ConventionISO, nil
	case "monday", "monday-anchored", "monday_anchored":
		return ConventionMondayAnchored, nil
	}
	return "", fmt.Errorf("unknown week convention: %q", s)
}

func (c WeekConvention) String() string { return string(c) }
