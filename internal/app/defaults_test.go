package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("FAENADOC_CONFIG_PATH", "/etc/faenadoc/faenadoc.toml")
		t.Setenv("FAENADOC_HOME", "/srv/faenadoc")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if d["config_path"] != "/etc/faenadoc/faenadoc.toml" {
			t.Errorf("config_path = %q, want env override", d["config_path"])
		}
		if d["base_dir"] != "/srv/faenadoc" {
			t.Errorf("base_dir = %q, want env override", d["base_dir"])
		}
		if d["log_dir"] != "/srv/faenadoc/log" {
			t.Errorf("log_dir = %q, want base_dir/log", d["log_dir"])
		}
	})

	t.Run("home fallbacks", func(t *testing.T) {
		t.Setenv("FAENADOC_CONFIG_PATH", "")
		t.Setenv("FAENADOC_HOME", "")
		t.Setenv("HOME", "/home/tester")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if d["config_path"] != filepath.Join("/home/tester", ".config", "faenadoc.toml") {
			t.Errorf("config_path = %q, want XDG default", d["config_path"])
		}
		if d["base_dir"] != filepath.Join("/home/tester", ".local", "share", "faenadoc") {
			t.Errorf("base_dir = %q, want XDG default", d["base_dir"])
		}
	})
}
