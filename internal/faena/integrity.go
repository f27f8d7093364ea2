package faena

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashBytes returns the lowercase hex SHA-256 digest of data. The digest
// fingerprints exports and backups and is recorded next to every stored
// artifact.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SanitizeSegment turns free text into a filesystem-safe archive path
// segment: lowercase, every run of non-alphanumeric characters collapsed to
// a single underscore, leading/trailing underscores trimmed. Empty input
// falls back to "item". Idempotent.
func SanitizeSegment(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "item"
	}
	return b.String()
}

// workerFolder builds the per-worker folder segment used under
// 03_Trabajadores.
func workerFolder(familyNames, givenNames, rut string) string {
	return SanitizeSegment(familyNames) + "_" + SanitizeSegment(givenNames) + "_" + SanitizeSegment(rut)
}
