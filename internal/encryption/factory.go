package encryption

import (
	"fmt"

	"faenadoc/internal/config"
	"faenadoc/internal/faena"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. A nil Encryptor (type "none") means backups are stored in plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig, passphrase PassphraseFunc) (faena.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg, passphrase), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
