package vault

import (
	"testing"

	"faenadoc/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		v, err := NewVaultFromConfig(config.VaultConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*MemoryVault); !ok {
			t.Errorf("vault = %T, want *MemoryVault", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := NewVaultFromConfig(config.VaultConfig{Type: "filesystem", FSVaultRoot: t.TempDir()})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*FileSystemVault); !ok {
			t.Errorf("vault = %T, want *FileSystemVault", v)
		}
	})

	t.Run("empty type defaults to filesystem", func(t *testing.T) {
		v, err := NewVaultFromConfig(config.VaultConfig{FSVaultRoot: t.TempDir()})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*FileSystemVault); !ok {
			t.Errorf("vault = %T, want *FileSystemVault", v)
		}
	})

	t.Run("filesystem requires root", func(t *testing.T) {
		if _, err := NewVaultFromConfig(config.VaultConfig{Type: "filesystem"}); err == nil {
			t.Error("expected error for missing fs_vault_root")
		}
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		if _, err := NewVaultFromConfig(config.VaultConfig{Type: "s3"}); err == nil {
			t.Error("expected error for missing s3_bucket")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewVaultFromConfig(config.VaultConfig{Type: "carrier-pigeon"}); err == nil {
			t.Error("expected error for unknown vault type")
		}
	})
}
