package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemVault_PutGet(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		v, err := NewFileSystemVault(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		data := []byte("archive payload")
		if err := v.Put("exports/faena_3/archive.zip", bytes.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		var got bytes.Buffer
		if err := v.Get("exports/faena_3/archive.zip", &got); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(got.Bytes(), data) {
			t.Errorf("Get() = %q, want %q", got.Bytes(), data)
		}
	})

	t.Run("size mismatch rejected", func(t *testing.T) {
		v, err := NewFileSystemVault(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		data := []byte("short")
		err = v.Put("a.zip", bytes.NewReader(data), int64(len(data))+10)
		if err == nil {
			t.Fatal("Put() expected size mismatch error")
		}
		if !strings.Contains(err.Error(), "size mismatch") {
			t.Errorf("error = %v, want size mismatch", err)
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		root := t.TempDir()
		v, err := NewFileSystemVault(root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		data := []byte("payload")
		if err := v.Put("a.zip", bytes.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		// A failed write must clean up too.
		if err := v.Put("b.zip", bytes.NewReader(data), 999); err == nil {
			t.Fatal("Put() expected error")
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".tmp-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("missing artifact", func(t *testing.T) {
		v, err := NewFileSystemVault(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		var buf bytes.Buffer
		err = v.Get("nope.zip", &buf)
		if err == nil {
			t.Fatal("Get() expected error for missing artifact")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestFileSystemVault_Delete(t *testing.T) {
	v, err := NewFileSystemVault(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	data := []byte("payload")
	if err := v.Put("auto_backups/a.db", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := v.Delete("auto_backups/a.db"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var buf bytes.Buffer
	if err := v.Get("auto_backups/a.db", &buf); err == nil {
		t.Error("Get() succeeded after Delete()")
	}

	// Deleting an absent artifact is not an error.
	if err := v.Delete("auto_backups/a.db"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("valid root", func(t *testing.T) {
		v, err := NewFileSystemVault(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not-a-dir")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
		v := &FileSystemVault{root: path}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() expected error for file root")
		}
	})
}
