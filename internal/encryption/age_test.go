package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"faenadoc/internal/config"
)

func testKeyConfig(t *testing.T) config.EncryptionConfig {
	t.Helper()
	dir := t.TempDir()
	return config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "faenadoc.pub"),
		PrivateKeyPath: filepath.Join(dir, "faenadoc.key"),
	}
}

func staticPassphrase(pass string) PassphraseFunc {
	return func() (string, error) { return pass, nil }
}

func TestAgeEncryptor_Setup(t *testing.T) {
	cfg := testKeyConfig(t)
	e := NewAgeEncryptor(cfg, nil)

	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup()")
	}

	if err := e.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup()")
	}

	// Public key is plaintext and readable.
	pub, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		t.Fatalf("reading public key: %v", err)
	}
	if !bytes.HasPrefix(pub, []byte("age1")) {
		t.Errorf("public key = %q, want age1 recipient", pub)
	}

	// Private key is age-encrypted, not a bare identity.
	priv, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatalf("reading private key: %v", err)
	}
	if bytes.Contains(priv, []byte("AGE-SECRET-KEY")) {
		t.Error("private key stored in plaintext")
	}
}

func TestAgeEncryptor_EncryptDecrypt(t *testing.T) {
	cfg := testKeyConfig(t)

	setup := NewAgeEncryptor(cfg, nil)
	if err := setup.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	calls := 0
	e := NewAgeEncryptor(cfg, func() (string, error) {
		calls++
		return "test-passphrase", nil
	})

	plaintext := []byte("backup archive contents")
	var ciphertext bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Contains(ciphertext.Bytes(), plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	var decrypted bytes.Buffer
	if err := e.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), plaintext)
	}

	// The unlocked identity is cached: a second decryption must not prompt.
	decrypted.Reset()
	if err := e.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("second Decrypt() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("passphrase prompted %d times, want 1", calls)
	}
}

func TestAgeEncryptor_Unlock(t *testing.T) {
	cfg := testKeyConfig(t)
	e := NewAgeEncryptor(cfg, nil)
	if err := e.Setup("correct-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if err := e.Unlock("wrong-passphrase"); err == nil {
		t.Error("Unlock() with wrong passphrase expected error")
	}
	if err := e.Unlock("correct-passphrase"); err != nil {
		t.Errorf("Unlock() with correct passphrase error = %v", err)
	}
}

func TestAgeEncryptor_MissingKeys(t *testing.T) {
	e := NewAgeEncryptor(testKeyConfig(t), staticPassphrase("x"))

	var buf bytes.Buffer
	if err := e.Encrypt(bytes.NewReader([]byte("data")), &buf); err == nil {
		t.Error("Encrypt() without key files expected error")
	}
	if err := e.Decrypt(bytes.NewReader([]byte("data")), &buf); err == nil {
		t.Error("Decrypt() without key files expected error")
	}
}
