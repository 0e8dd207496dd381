// Package memory is an in-process transaction store holding one grid of
// cells per sheet title. It backs local development and tests.
package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"spendwise/internal/core"
	ports "spendwise/internal/sheets"
)

type sheet struct {
	id   int64
	rows [][]string
}

type Store struct {
	mu     sync.Mutex
	sheets map[string]*sheet
	nextID int64
}

var _ ports.Store = (*Store)(nil)

var errUnknownSheet = errors.New("unknown sheet")

func New() *Store {
	return &Store{sheets: make(map[string]*sheet)}
}

// NewFromFiles seeds one sheet per "<title>.csv" file in dir. Files are
// loaded in name order so sheet ids are stable. A missing dir yields an
// empty store.
func NewFromFiles(dir string) (*Store, error) {
	s := New()
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	for _, path := range matches {
		rows, err := readCSV(path)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		title := strings.TrimSuffix(filepath.Base(path), ".csv")
		s.Seed(title, rows)
	}
	return s, nil
}

// Seed replaces the content of a sheet, creating it if needed.
func (s *Store) Seed(title string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := s.sheetLocked(title)
	sh.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		sh.rows = append(sh.rows, append([]string(nil), r...))
	}
}

func (s *Store) ReadRange(_ context.Context, rangeSpec string) (core.RawTable, error) {
	r, err := ports.ParseRange(rangeSpec)
	if err != nil {
		return nil, ports.Wrap("read", rangeSpec, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[r.Sheet]
	if !ok {
		return nil, ports.Wrap("read", rangeSpec, errUnknownSheet)
	}
	out := make(core.RawTable, 0, len(sh.rows))
	for _, row := range sh.rows {
		out = append(out, window(row, r.StartIndex(), r.Width()))
	}
	return out, nil
}

// AppendRow writes the row after the last row of the sheet. Unknown
// sheets are created, as appending to a fresh tab does in a spreadsheet.
func (s *Store) AppendRow(_ context.Context, rangeSpec string, row []string) (string, error) {
	r, err := ports.ParseRange(rangeSpec)
	if err != nil {
		return "", ports.Wrap("append", rangeSpec, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := s.sheetLocked(r.Sheet)
	sh.rows = append(sh.rows, place(nil, r, row))
	return r.Row(len(sh.rows)), nil
}

func (s *Store) UpdateRow(_ context.Context, rangeSpec string, rowIndex int, row []string) error {
	r, err := ports.ParseRange(rangeSpec)
	if err != nil {
		return ports.Wrap("update", rangeSpec, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[r.Sheet]
	if !ok {
		return ports.Wrap("update", rangeSpec, errUnknownSheet)
	}
	if rowIndex < 1 || rowIndex > len(sh.rows) {
		return ports.Wrap("update", r.Row(rowIndex), core.ErrInvalidRowNumber)
	}
	sh.rows[rowIndex-1] = place(sh.rows[rowIndex-1], r, row)
	return nil
}

func (s *Store) DeleteRow(_ context.Context, sheetID int64, rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for title, sh := range s.sheets {
		if sh.id != sheetID {
			continue
		}
		if rowIndex < 1 || rowIndex > len(sh.rows) {
			return ports.Wrap("delete", fmt.Sprintf("%s!%d", title, rowIndex), core.ErrInvalidRowNumber)
		}
		sh.rows = append(sh.rows[:rowIndex-1], sh.rows[rowIndex:]...)
		return nil
	}
	return ports.Wrap("delete", "", fmt.Errorf("%w: id %d", errUnknownSheet, sheetID))
}

func (s *Store) SheetID(_ context.Context, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[title]
	if !ok {
		return 0, ports.Wrap("metadata", title, errUnknownSheet)
	}
	return sh.id, nil
}

func (s *Store) sheetLocked(title string) *sheet {
	sh, ok := s.sheets[title]
	if !ok {
		sh = &sheet{id: s.nextID}
		s.nextID++
		s.sheets[title] = sh
	}
	return sh
}

// window returns up to width cells starting at start.
func window(row []string, start, width int) []string {
	if start >= len(row) {
		return []string{}
	}
	end := start + width
	if end > len(row) {
		end = len(row)
	}
	return append([]string(nil), row[start:end]...)
}

// place writes cells into row at the range's first column, padding as needed.
func place(row []string, r ports.Range, cells []string) []string {
	start := r.StartIndex()
	out := append([]string(nil), row...)
	for len(out) < start+len(cells) {
		out = append(out, "")
	}
	copy(out[start:], cells)
	return out
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}
