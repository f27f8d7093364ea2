package faena

import "io"

// Vault is the stable storage where export and backup artifacts live.
// Names are slash-separated relative paths such as
// "exports/faena_3/faena_3_puerto_seco_20260101_120000.zip".
// All operations stream through io.Reader/io.Writer so large archives never
// need to be buffered twice.
type Vault interface {
	// Put stores an artifact under name. size is the number of bytes that
	// will be read from r; implementations must fail on a mismatch.
	Put(name string, r io.Reader, size int64) error

	// Get retrieves the artifact stored under name and writes it to w.
	Get(name string, w io.Writer) error

	// Delete removes the artifact stored under name. Deleting a name that
	// does not exist is not an error.
	Delete(name string) error

	// ValidateSetup verifies that the vault is accessible and properly
	// configured.
	ValidateSetup() error
}

// Encryptor guards full backups. Implementations are stateless with respect
// to the data stream.
type Encryptor interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
