package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spendwise/internal/budget"
	"spendwise/internal/config"
	"spendwise/internal/core"
)

const (
	analyticsRange = "Analytics!A:F"
	trackerRange   = "Tracker_Sheet!A:D"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:    "sqlite",
		DataDir:        "fixtures",
		SQLiteDBPath:   "/tmp/x.db",
		AnalyticsRange: analyticsRange,
		TrackerRange:   trackerRange,
		WeekConvention: string(budget.ConventionMondayAnchored),
	}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.DataDirectory != "fixtures" || got.Convention != budget.ConventionMondayAnchored {
		t.Fatalf("config = %+v", got)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg.DataBackend = "postgres"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{AnalyticsRange: analyticsRange, TrackerRange: trackerRange}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory", func(c *Config) { c.Type = MemoryBackend }, false},
		{"sqlite without path", func(c *Config) { c.Type = SQLiteBackend }, true},
		{"sqlite", func(c *Config) { c.Type = SQLiteBackend; c.SQLiteDBPath = "x.db" }, false},
		{"sheets without credentials", func(c *Config) { c.Type = SheetsBackend; c.GoogleSpreadsheetID = "abc" }, true},
		{"sheets", func(c *Config) {
			c.Type = SheetsBackend
			c.GoogleSpreadsheetID = "abc"
			c.GoogleServiceAccountJSON = "{}"
		}, false},
		{"missing ranges", func(c *Config) { c.Type = MemoryBackend; c.TrackerRange = "" }, true},
		{"unknown type", func(c *Config) { c.Type = "csv" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	csv := "1,50,Food,,Init,2025-01-06\n"
	if err := os.WriteFile(filepath.Join(dir, "Analytics.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:           MemoryBackend,
		AnalyticsRange: analyticsRange,
		TrackerRange:   trackerRange,
		DataDirectory:  dir,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if res.Budgets != nil {
		t.Fatal("memory backend keeps budgets in the analytics sheet")
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	rows, err := res.Store.ReadRange(context.Background(), analyticsRange)
	if err != nil || len(rows) != 1 || rows[0][2] != "Food" {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:           SQLiteBackend,
		AnalyticsRange: analyticsRange,
		TrackerRange:   trackerRange,
		Convention:     budget.ConventionMondayAnchored,
		SQLiteDBPath:   filepath.Join(t.TempDir(), "spendwise.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if err := res.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if res.Budgets == nil {
		t.Fatal("sqlite backend should accept budget writes")
	}
	if err := res.Budgets.SetWeeklyBudget(ctx, "Food", core.Money{Cents: 5000}); err != nil {
		t.Fatalf("SetWeeklyBudget: %v", err)
	}
	if _, err := res.Store.AppendRow(ctx, trackerRange, []string{"2025-01-07", "12.50", "Food", "Lunch"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	rows, err := res.Store.ReadRange(ctx, trackerRange)
	if err != nil || len(rows) != 1 {
		t.Fatalf("tracker rows=%v err=%v", rows, err)
	}
}
