package sheets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 range such as "Tracker_Sheet!A:D".
type Range struct {
	Sheet    string
	StartCol string
	EndCol   string
}

var errBadRange = errors.New("invalid range")

// ParseRange splits an A1 range into sheet title and column span. Row
// numbers in the cell references are ignored.
func ParseRange(spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	i := strings.LastIndex(spec, "!")
	if i <= 0 {
		return Range{}, fmt.Errorf("%w: %q", errBadRange, spec)
	}
	r := Range{Sheet: strings.Trim(spec[:i], "'")}
	cells := spec[i+1:]
	start, end, found := strings.Cut(cells, ":")
	r.StartCol = columnLetters(start)
	if found {
		r.EndCol = columnLetters(end)
	} else {
		r.EndCol = r.StartCol
	}
	if r.Sheet == "" || r.StartCol == "" || r.EndCol == "" {
		return Range{}, fmt.Errorf("%w: %q", errBadRange, spec)
	}
	return r, nil
}

// Row returns the A1 reference of one row within the range's columns.
func (r Range) Row(n int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", r.Sheet, r.StartCol, n, r.EndCol, n)
}

// Width is the number of columns spanned.
func (r Range) Width() int {
	return columnNumber(r.EndCol) - columnNumber(r.StartCol) + 1
}

// StartIndex is the 0-based index of the first column.
func (r Range) StartIndex() int {
	return columnNumber(r.StartCol) - 1
}

// RowFromRef extracts the first row number of an A1 reference such as
// "Tracker_Sheet!A12:D12".
func RowFromRef(ref string) (int, error) {
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	first, _, _ := strings.Cut(ref, ":")
	digits := strings.TrimLeftFunc(first, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("no row in reference %q", ref)
	}
	return n, nil
}

func columnLetters(cell string) string {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	end := 0
	for end < len(cell) && cell[end] >= 'A' && cell[end] <= 'Z' {
		end++
	}
	return cell[:end]
}

func columnNumber(letters string) int {
	n := 0
	for _, c := range letters {
		n = n*26 + int(c-'A'+1)
	}
	return n
}
