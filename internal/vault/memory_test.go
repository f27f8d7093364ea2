package vault

import (
	"bytes"
	"testing"
)

func TestMemoryVault(t *testing.T) {
	v := NewMemoryVault()

	data := []byte("payload")
	if err := v.Put("exports/a.zip", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !v.Has("exports/a.zip") {
		t.Error("Has() = false after Put()")
	}
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}

	var got bytes.Buffer
	if err := v.Get("exports/a.zip", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got.Bytes(), data) {
		t.Errorf("Get() = %q, want %q", got.Bytes(), data)
	}

	if err := v.Put("b.zip", bytes.NewReader(data), 999); err == nil {
		t.Error("Put() expected size mismatch error")
	}

	if err := v.Delete("exports/a.zip"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if v.Has("exports/a.zip") {
		t.Error("Has() = true after Delete()")
	}
	var buf bytes.Buffer
	if err := v.Get("exports/a.zip", &buf); err == nil {
		t.Error("Get() succeeded after Delete()")
	}
}
