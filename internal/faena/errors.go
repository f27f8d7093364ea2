package faena

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Everything else is recovered locally:
// a document whose file has been pruned from disk is skipped during archive
// construction, and retention cleanup failures never abort a snapshot.
var (
	// ErrNotFound marks a referenced record (site, export) that does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrNoSites is returned by the monthly builder when no site starts in
	// the requested month.
	ErrNoSites = errors.New("no sites in month")

	// ErrInvalidArchive marks a restore payload that is not a readable
	// archive or contains no database.
	ErrInvalidArchive = errors.New("invalid backup archive")

	// ErrCodeBackup is the distinct diagnosis for archives that hold
	// application source instead of data. It wraps ErrInvalidArchive so
	// callers checking the broad kind still match.
	ErrCodeBackup = fmt.Errorf("%w: archive holds application source, not a data backup", ErrInvalidArchive)
)
