package budget

import (
	"testing"

	"spendwise/internal/core"
)

func initRow(category, budget string) Record {
	return Record{WeekKey: "1", WeekNumber: 1, Category: category, Budget: dec(budget), Description: "Initialise", IsInitialiser: true}
}

func TestResolveBudget_LastWinsForCategory(t *testing.T) {
	records := []Record{initRow("Food", "50"), initRow("Food", "80")}
	if got := ResolveBudget(records, "Food"); !got.Equal(dec("80")) {
		t.Fatalf("expected 80, got %s", got)
	}
}

func TestResolveBudget_LastWinsSkipsBlankBudget(t *testing.T) {
	raw := core.RawTable{
		{"WeekNum", "Amount", "Category", "Weekly Budget", "Description"},
		{"1", "0", "Food", "50", "Initialise"},
		{"2", "0", "Food", "", "Initialise"},
		{"3", "0", "Food", "0", "initialise"},
	}
	table, err := ParseTable(raw)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if got := ResolveBudget(table.Records, "Food"); !got.Equal(dec("50")) {
		t.Fatalf("expected 50, got %s", got)
	}
	// The scorecard map keeps the raw last-wins value.
	if got, _ := BuildBudgetMap(table.Records).Get("Food"); !got.IsZero() {
		t.Fatalf("budget map expected 0, got %s", got)
	}
}

func TestBuildBudgetMap_SkipsUnnamedCategory(t *testing.T) {
	records := []Record{initRow("", "20"), initRow("Food", "50")}
	m := BuildBudgetMap(records)
	if m.Len() != 1 || m.Categories()[0] != "Food" {
		t.Fatalf("expected only Food, got %v", m.Categories())
	}
	if got := ResolveBudget(records, "All"); !got.Equal(dec("70")) {
		t.Fatalf("All should still count the unnamed budget, got %s", got)
	}
}

func TestResolveBudget_AdditiveForAll(t *testing.T) {
	records := []Record{initRow("Food", "50"), initRow("Fuel", "30")}
	if got := ResolveBudget(records, "All"); !got.Equal(dec("80")) {
		t.Fatalf("expected 80, got %s", got)
	}
}

func TestResolveBudget_Asymmetry(t *testing.T) {
	records := []Record{initRow("Food", "50"), initRow("Food", "80"), initRow("Fuel", "30")}

	if got := ResolveBudget(records, "All"); !got.Equal(dec("160")) {
		t.Fatalf("additive All expected 160, got %s", got)
	}
	if got := BuildBudgetMap(records).Total(); !got.Equal(dec("110")) {
		t.Fatalf("budget map total expected 110, got %s", got)
	}
}

func TestResolveBudget_IgnoresSpendingAndNonPositive(t *testing.T) {
	records := []Record{
		{WeekNumber: 1, Category: "Food", Budget: dec("999"), Amount: dec("5")},
		initRow("Fuel", "0"),
		initRow("Gift", "-10"),
		initRow("Food", "40"),
	}
	if got := ResolveBudget(records, "All"); !got.Equal(dec("40")) {
		t.Fatalf("expected 40, got %s", got)
	}
	if got := ResolveBudget(records, "Gift"); !got.IsZero() {
		t.Fatalf("negative budget should read as zero, got %s", got)
	}
	if got := ResolveBudget(records, "Unknown"); !got.IsZero() {
		t.Fatalf("expected zero for unknown category, got %s", got)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor("All") != ModeAdditive || ModeFor("") != ModeAdditive {
		t.Fatal("All should resolve additively")
	}
	if ModeFor("Food") != ModeLastWins {
		t.Fatal("named category should resolve last-wins")
	}
}

func TestBuildBudgetMap_EncounterOrder(t *testing.T) {
	m := BuildBudgetMap([]Record{initRow("Fuel", "30"), initRow("Food", "50"), initRow("Fuel", "35")})
	cats := m.Categories()
	if len(cats) != 2 || cats[0] != "Fuel" || cats[1] != "Food" {
		t.Fatalf("unexpected order %v", cats)
	}
	if b, ok := m.Get("Fuel"); !ok || !b.Equal(dec("35")) {
		t.Fatalf("expected Fuel=35, got %s (ok=%v)", b, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", m.Len())
	}
}
