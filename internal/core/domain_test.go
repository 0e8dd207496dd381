package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, 1, 1),
		Amount:   Money{Cents: 100},
		Category: "Groceries",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Amount: Money{Cents: 1}, Category: "c"}, ErrMissingDate},
		{Transaction{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 0}, Category: "c"}, ErrInvalidAmount},
		{Transaction{Date: NewDate(2025, 1, 1), Amount: Money{Cents: -10}, Category: "c"}, ErrInvalidAmount},
		{Transaction{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: "  "}, ErrEmptyCategory},
		{Transaction{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: "c", Description: string(long)}, ErrDescriptionLong},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestTransactionRowRoundTrip(t *testing.T) {
	tx := Transaction{
		Date:        NewDate(2025, 3, 4),
		Amount:      Money{Cents: 1999},
		Category:    "Petrol",
		Description: "fill up",
	}
	row := tx.Row()
	want := []string{"2025-03-04", "19.99", "Petrol", "fill up"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d: expected %q, got %q", i, want[i], row[i])
		}
	}
	if got := TransactionFromRow(row); got != tx {
		t.Fatalf("expected %+v, got %+v", tx, got)
	}
}

func TestTransactionFromShortRow(t *testing.T) {
	got := TransactionFromRow([]string{"not a date", "$5"})
	if !got.Date.IsZero() {
		t.Fatalf("expected zero date, got %v", got.Date)
	}
	if got.Amount.Cents != 500 {
		t.Fatalf("expected 500 cents, got %d", got.Amount.Cents)
	}
	if got.Category != "" || got.Description != "" {
		t.Fatalf("expected empty category and description, got %+v", got)
	}
}

func TestTransactionFromRow_SheetDates(t *testing.T) {
	want := NewDate(2025, 1, 2)
	for _, in := range []string{"2025-01-02", "02/01/2025", "2/1/2025", "2 Jan 2025"} {
		t.Run(in, func(t *testing.T) {
			got := TransactionFromRow([]string{in, "12.50", "Food", "Lunch"})
			if !got.Date.Equal(want.Time) {
				t.Fatalf("date = %v, want %v", got.Date, want)
			}
		})
	}
}

func TestParseSheetDate(t *testing.T) {
	d, err := ParseSheetDate("2025-01-09T22:00:00+10:00")
	if err != nil || d != NewDate(2025, 1, 9) {
		t.Fatalf("got %v, %v", d, err)
	}
	if _, err := ParseSheetDate("soon"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestIsAllCategories(t *testing.T) {
	if !IsAllCategories("All") || !IsAllCategories("") {
		t.Fatal("expected All and empty to select every category")
	}
	if IsAllCategories("all") {
		t.Fatal("category selector is case-sensitive")
	}
}
