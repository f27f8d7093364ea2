package faena_test

import (
	"fmt"
	"testing"

	"faenadoc/internal/faena"
	"faenadoc/internal/testutil"
)

func TestService_PersistExport(t *testing.T) {
	f := testutil.NewFixture(t)
	site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")

	zipBytes, name, err := f.Service.BuildSiteArchive(site.ID, faena.AllArchiveOptions())
	if err != nil {
		t.Fatalf("BuildSiteArchive() error = %v", err)
	}

	rec, err := f.Service.PersistExport(site.ID, zipBytes, name)
	if err != nil {
		t.Fatalf("PersistExport() error = %v", err)
	}

	// FixedClock is 2026-01-15 10:30:00 UTC.
	wantPath := fmt.Sprintf("exports/faena_%d/faena_%d_puerto_seco_20260115_103000.zip", site.ID, site.ID)
	if rec.Path != wantPath {
		t.Errorf("Path = %q, want %q", rec.Path, wantPath)
	}
	if !f.Vault.Has(wantPath) {
		t.Error("artifact not stored in vault")
	}
	if rec.SHA256 != faena.HashBytes(zipBytes) {
		t.Errorf("SHA256 = %q, want digest of archive bytes", rec.SHA256)
	}
	if rec.SizeBytes != int64(len(zipBytes)) {
		t.Errorf("SizeBytes = %d, want %d", rec.SizeBytes, len(zipBytes))
	}
	if rec.CreatedAt != "2026-01-15T10:30:00Z" {
		t.Errorf("CreatedAt = %q, want fixed clock time", rec.CreatedAt)
	}

	history, err := f.Service.ExportHistory(site.ID)
	if err != nil {
		t.Fatalf("ExportHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].Path != wantPath {
		t.Errorf("history = %+v, want single row for %s", history, wantPath)
	}
}

func TestService_PersistMonthlyExport(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-10")

	zipBytes, ym, err := f.Service.BuildMonthlyArchive(2026, 1, true)
	if err != nil {
		t.Fatalf("BuildMonthlyArchive() error = %v", err)
	}

	rec, err := f.Service.PersistMonthlyExport(ym, zipBytes)
	if err != nil {
		t.Fatalf("PersistMonthlyExport() error = %v", err)
	}

	wantPath := "exports/mes/mes_2026-01_20260115_103000.zip"
	if rec.Path != wantPath {
		t.Errorf("Path = %q, want %q", rec.Path, wantPath)
	}
	if rec.YearMonth != "2026-01" {
		t.Errorf("YearMonth = %q, want %q", rec.YearMonth, "2026-01")
	}
	if !f.Vault.Has(wantPath) {
		t.Error("artifact not stored in vault")
	}

	// Monthly history is keyed by siteID 0.
	history, err := f.Service.ExportHistory(0)
	if err != nil {
		t.Fatalf("ExportHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].YearMonth != "2026-01" {
		t.Errorf("history = %+v, want single monthly row", history)
	}
}
