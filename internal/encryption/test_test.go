package encryption

import (
	"bytes"
	"testing"

	"faenadoc/internal/config"
)

func TestTestEncryptor_RoundTrip(t *testing.T) {
	e := NewTestEncryptor()

	plaintext := []byte("snapshot payload")
	var ciphertext bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Equal(ciphertext.Bytes(), plaintext) {
		t.Error("ciphertext equals plaintext")
	}

	var decrypted bytes.Buffer
	if err := e.Decrypt(bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), plaintext)
	}
}

func TestTestEncryptor_RejectsUnmarkedData(t *testing.T) {
	e := NewTestEncryptor()
	var buf bytes.Buffer
	if err := e.Decrypt(bytes.NewReader([]byte("not encrypted data")), &buf); err == nil {
		t.Error("Decrypt() expected error for data without header")
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("none yields nil encryptor", func(t *testing.T) {
		for _, typ := range []string{"none", ""} {
			e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: typ}, nil)
			if err != nil {
				t.Fatalf("NewEncryptorFromConfig(%q) error = %v", typ, err)
			}
			if e != nil {
				t.Errorf("encryptor for %q = %T, want nil", typ, e)
			}
		}
	})

	t.Run("age", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "age"}, staticPassphrase("x"))
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*AgeEncryptor); !ok {
			t.Errorf("encryptor = %T, want *AgeEncryptor", e)
		}
	})

	t.Run("test", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "test"}, nil)
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*TestEncryptor); !ok {
			t.Errorf("encryptor = %T, want *TestEncryptor", e)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}, nil); err == nil {
			t.Error("expected error for unknown encryption type")
		}
	})
}
