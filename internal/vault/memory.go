package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"faenadoc/internal/faena"
)

// MemoryVault keeps artifacts in a map. Use in tests.
type MemoryVault struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{artifacts: make(map[string][]byte)}
}

func (v *MemoryVault) Put(name string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	written, err := io.Copy(&buf, r)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.artifacts[name] = buf.Bytes()
	return nil
}

func (v *MemoryVault) Get(name string, w io.Writer) error {
	v.mu.RLock()
	data, ok := v.artifacts[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("artifact not found: %s", name)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

func (v *MemoryVault) Delete(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.artifacts, name)
	return nil
}

func (v *MemoryVault) ValidateSetup() error { return nil }

// Has reports whether an artifact exists. Test helper.
func (v *MemoryVault) Has(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.artifacts[name]
	return ok
}

// Len returns the number of stored artifacts. Test helper.
func (v *MemoryVault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.artifacts)
}

// Compile-time check that MemoryVault implements faena.Vault
var _ faena.Vault = (*MemoryVault)(nil)
