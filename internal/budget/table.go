package budget

import (
	"strconv"
	"strings"
	"unicode"

	"spendwise/internal/core"

	"github.com/shopspring/decimal"
)

// Header names of the analytics table.
const (
	ColumnWeekNum      = "WeekNum"
	ColumnAmount       = "Amount"
	ColumnCategory     = "Category"
	ColumnWeeklyBudget = "Weekly Budget"
	ColumnDescription  = "Description"
	ColumnDate         = "Date"
)

// AnalyticsHeader is the column order written by stores that synthesise
// the analytics table themselves.
var AnalyticsHeader = []string{
	ColumnWeekNum, ColumnAmount, ColumnCategory,
	ColumnWeeklyBudget, ColumnDescription, ColumnDate,
}

// Record is one typed data row of the analytics table.
type Record struct {
	WeekKey       string
	WeekNumber    int
	Amount        decimal.Decimal
	Budget        decimal.Decimal
	Category      string
	Description   string
	Date          core.Date // zero when absent or unparseable
	IsInitialiser bool
}

// HasDate reports whether the record carried a parseable date.
func (r Record) HasDate() bool { return !r.Date.IsZero() }

// Table is the result of parsing a RawTable.
type Table struct {
	Records []Record
	// Dropped counts data rows excluded for lacking a week number.
	Dropped int
}

type columns struct {
	week, amount, category, budget, description, date int
}

// ParseTable turns a raw grid into records, locating columns by exact
// header name. WeekNum, Amount and Category are required; Weekly Budget,
// Description and Date are used when present.
func ParseTable(raw core.RawTable) (*Table, error) {
	if len(raw) <= 1 {
		return nil, &NoDataError{Rows: len(raw)}
	}

	cols := columns{
		week:        headerIndex(raw[0], ColumnWeekNum),
		amount:      headerIndex(raw[0], ColumnAmount),
		category:    headerIndex(raw[0], ColumnCategory),
		budget:      headerIndex(raw[0], ColumnWeeklyBudget),
		description: headerIndex(raw[0], ColumnDescription),
		date:        headerIndex(raw[0], ColumnDate),
	}
	var missing []string
	if cols.week < 0 {
		missing = append(missing, ColumnWeekNum)
	}
	if cols.amount < 0 {
		missing = append(missing, ColumnAmount)
	}
	if cols.category < 0 {
		missing = append(missing, ColumnCategory)
	}
	if len(missing) > 0 {
		return nil, &ParseError{Missing: missing}
	}

	t := &Table{Records: make([]Record, 0, len(raw)-1)}
	for _, row := range raw[1:] {
		rec, ok := parseRecord(row, cols)
		if !ok {
			t.Dropped++
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func parseRecord(row []string, c columns) (Record, bool) {
	rec := Record{
		WeekKey:     cell(row, c.week),
		Category:    cell(row, c.category),
		Description: cell(row, c.description),
	}
	week, ok := TrailingWeekNumber(rec.WeekKey)
	if !ok {
		return Record{}, false
	}
	rec.WeekNumber = week
	rec.Amount = parseAmount(cell(row, c.amount))
	rec.Budget = parseAmount(cell(row, c.budget))
	rec.Date = parseDate(cell(row, c.date))
	rec.IsInitialiser = strings.EqualFold(rec.Description, core.InitialiserMarker)
	return rec, true
}

// TrailingWeekNumber extracts the trailing run of digits from a week key:
// "2025-W07" gives 7, "12" gives 12, "W00" gives 0. Keys without trailing
// digits are not resolvable.
func TrailingWeekNumber(key string) (int, bool) {
	key = strings.TrimSpace(key)
	end := len(key)
	start := end
	for start > 0 && key[start-1] >= '0' && key[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(key[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// WeekSortKey orders week keys. A key whose first digit run is a 4-digit
// year ("2025-W07") sorts as year*100+week; anything else sorts by its
// bare week number.
func WeekSortKey(key string) int {
	week, ok := TrailingWeekNumber(key)
	if !ok {
		return 0
	}
	runs := strings.FieldsFunc(key, func(r rune) bool { return !unicode.IsDigit(r) })
	if len(runs) >= 2 && len(runs[0]) == 4 {
		if year, err := strconv.Atoi(runs[0]); err == nil {
			return year*100 + week
		}
	}
	return week
}

// parseAmount is lenient: anything that does not read as a number is zero.
func parseAmount(s string) decimal.Decimal {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) core.Date {
	d, err := core.ParseSheetDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func headerIndex(headers []string, name string) int {
	for i, h := range headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
