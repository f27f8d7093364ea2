package faena_test

import (
	"strings"
	"testing"
	"time"

	"faenadoc/internal/encryption"
	"faenadoc/internal/faena"
	"faenadoc/internal/testutil"
)

func TestService_FullSnapshot(t *testing.T) {
	f := testutil.NewFixture(t)
	site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")
	w := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
	f.AddWorkerDoc(t, w.ID, "IRL")

	data, err := f.Service.FullSnapshot()
	if err != nil {
		t.Fatalf("FullSnapshot() error = %v", err)
	}

	entries := zipEntries(t, data)
	if _, ok := entries["backup/app.db"]; !ok {
		t.Errorf("database payload missing, entries = %v", keys(entries))
	}
	meta, ok := entries["backup/META.txt"]
	if !ok {
		t.Fatal("META.txt missing")
	}
	if !strings.Contains(meta, "created_at_utc=2026-01-15T10:30:00Z") {
		t.Errorf("META = %q, want fixed clock timestamp", meta)
	}

	uploads := 0
	for name := range entries {
		if strings.HasPrefix(name, "backup/uploads/") {
			uploads++
		}
	}
	if uploads == 0 {
		t.Error("upload tree missing from snapshot")
	}
}

func TestService_FullSnapshotEncrypted(t *testing.T) {
	t.Run("fails without an encryptor", func(t *testing.T) {
		f := testutil.NewFixture(t)
		if _, err := f.Service.FullSnapshotEncrypted(); err == nil {
			t.Error("FullSnapshotEncrypted() expected error with no encryptor")
		}
	})

	t.Run("output is not a plain zip", func(t *testing.T) {
		policy := faena.BackupPolicy{Enabled: true, KeepLast: faena.DefaultKeepLast}
		f := testutil.NewFixtureWith(t, policy, encryption.NewTestEncryptor())
		f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")

		data, err := f.Service.FullSnapshotEncrypted()
		if err != nil {
			t.Fatalf("FullSnapshotEncrypted() error = %v", err)
		}
		if strings.HasPrefix(string(data), "PK") {
			t.Error("encrypted snapshot still starts with a zip signature")
		}
	})
}

func TestService_AutoSnapshot(t *testing.T) {
	t.Run("disabled policy is a silent no-op", func(t *testing.T) {
		f := testutil.NewFixtureWith(t, faena.BackupPolicy{Enabled: false}, nil)
		rec, err := f.Service.AutoSnapshot("faena")
		if err != nil {
			t.Fatalf("AutoSnapshot() error = %v", err)
		}
		if rec != nil {
			t.Errorf("rec = %+v, want nil", rec)
		}
		if f.Vault.Len() != 0 {
			t.Errorf("vault has %d artifacts, want 0", f.Vault.Len())
		}
	})

	t.Run("stores artifact and history row", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")

		rec, err := f.Service.AutoSnapshot("faena")
		if err != nil {
			t.Fatalf("AutoSnapshot() error = %v", err)
		}
		want := "auto_backups/auto_db_20260115_103000_faena.db"
		if rec.Path != want {
			t.Errorf("Path = %q, want %q", rec.Path, want)
		}
		if !f.Vault.Has(want) {
			t.Error("artifact not stored in vault")
		}

		history, err := f.Service.AutoBackupHistory()
		if err != nil {
			t.Fatalf("AutoBackupHistory() error = %v", err)
		}
		if len(history) != 1 || history[0].Tag != "faena" {
			t.Errorf("history = %+v, want single tagged row", history)
		}
	})

	t.Run("retention keeps the newest records", func(t *testing.T) {
		f := testutil.NewFixtureWith(t, faena.BackupPolicy{Enabled: true, KeepLast: 3}, nil)
		f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")

		var paths []string
		for i := 0; i < 5; i++ {
			rec, err := f.Service.AutoSnapshot("faena")
			if err != nil {
				t.Fatalf("AutoSnapshot() #%d error = %v", i, err)
			}
			paths = append(paths, rec.Path)
			f.Clock.Advance(time.Minute)
		}

		history, err := f.Service.AutoBackupHistory()
		if err != nil {
			t.Fatalf("AutoBackupHistory() error = %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("history rows = %d, want 3", len(history))
		}
		// Newest first: the last three snapshots survive.
		for i, want := range []string{paths[4], paths[3], paths[2]} {
			if history[i].Path != want {
				t.Errorf("history[%d].Path = %q, want %q", i, history[i].Path, want)
			}
		}

		for _, pruned := range paths[:2] {
			if f.Vault.Has(pruned) {
				t.Errorf("pruned artifact still in vault: %s", pruned)
			}
		}
		for _, kept := range paths[2:] {
			if !f.Vault.Has(kept) {
				t.Errorf("kept artifact missing from vault: %s", kept)
			}
		}
	})
}
