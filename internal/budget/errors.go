package budget

import (
	"fmt"
	"strings"
)

// ParseError reports that the analytics table lacks required columns.
// No records are produced when it is returned.
type ParseError struct {
	Missing []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse table: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// NoDataError reports an empty or header-only table.
type NoDataError struct {
	Rows int
}

func (e *NoDataError) Error() string {
	if e.Rows == 0 {
		return "no data: table is empty"
	}
	return "no data: table has a header but no rows"
}

// ValidationError reports a filter combination that matched nothing.
type ValidationError struct {
	Kind     ReportKind
	Category string
	Week     int
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("no data for selection")
	fmt.Fprintf(&b, " (report=%s", e.Kind)
	if e.Category != "" {
		fmt.Fprintf(&b, ", category=%s", e.Category)
	}
	if e.Week > 0 {
		fmt.Fprintf(&b, ", week=%d", e.Week)
	}
	b.WriteString(")")
	return b.String()
}
