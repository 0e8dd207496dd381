package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AllCategories is the category selector meaning "every category".
const AllCategories = "All"

// InitialiserMarker is the description that marks a budget-declaring row.
const InitialiserMarker = "initialise"

type (
	// RawTable is a 2-D grid of cell strings as returned by a range read.
	// Row 0 is the header when the range carries one.
	RawTable [][]string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one row of the transaction log
	// (date, amount, category, description).
	Transaction struct {
		Date        Date
		Amount      Money
		Category    string
		Description string
	}

	// LoggedTransaction is a transaction together with its 1-based
	// position in the log range.
	LoggedTransaction struct {
		Row int
		Transaction
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingDate      = errors.New("date is required")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidRowNumber = errors.New("invalid row number")
)

// DefaultCategories is the category catalogue used when none is configured.
var DefaultCategories = []string{
	"Dating Allowance",
	"Petrol",
	"Gift Allowance",
	"Wellbeing allowance - Andrew",
	"Wellbeing allowance - Emmy",
	"Wellbeing allowance - Together",
	"Car Expenses",
	"Utilities (Water, Gas & Elec)",
	"Groceries",
	"Food & Dining",
	"Household Goods (e.g. Medicine, Cleaning, Small goods)",
	"Others",
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date the way the transaction log stores it.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateLayout is the canonical layout for dates written to the log.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// sheetDateLayouts are tried in order. Day-first precedes month-first
// because the sheets are kept in an Australian locale, and Sheets returns
// USER_ENTERED dates in that display format.
var sheetDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseSheetDate reads a date cell as a spreadsheet displays it. The
// clock and zone are dropped, keeping the wall-clock day.
func ParseSheetDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognised date %q", s)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLong
	}
	return nil
}

// Row renders the transaction as a log row: date, amount, category, description.
func (t Transaction) Row() []string {
	return []string{t.Date.String(), t.Amount.String(), t.Category, t.Description}
}

// TransactionFromRow reads a log row. Missing trailing cells are treated
// as empty; an unparseable date or amount is left at its zero value so
// that listing never fails on a hand-edited sheet.
func TransactionFromRow(row []string) Transaction {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	var tx Transaction
	if d, err := ParseSheetDate(cell(0)); err == nil {
		tx.Date = d
	}
	if c, err := ParseSignedDecimalToCents(cell(1)); err == nil {
		tx.Amount = Money{Cents: c}
	}
	tx.Category = cell(2)
	tx.Description = cell(3)
	return tx
}

// IsAllCategories reports whether a category selector means every category.
func IsAllCategories(category string) bool {
	return category == "" || category == AllCategories
}
