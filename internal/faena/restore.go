package faena

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RestoreState tracks how far a restore got. The only failure short-circuits
// are Received→Failed (unreadable archive) and Extracted→Failed (no database
// payload); every later step either completes or surfaces its error with the
// state it died in.
type RestoreState string

const (
	StateReceived      RestoreState = "Received"
	StateExtracted     RestoreState = "Extracted"
	StateDataLocated   RestoreState = "DataLocated"
	StateDataReplaced  RestoreState = "DataReplaced"
	StateFilesReplaced RestoreState = "FilesReplaced"
	StateMigrated      RestoreState = "Migrated"
	StateDone          RestoreState = "Done"
	StateFailed        RestoreState = "Failed"
)

// RestoreResult summarizes a finished restore.
type RestoreResult struct {
	State          RestoreState
	DatabaseEntry  string // scratch-relative path the payload was found at
	FilesReplaced  bool   // whether an uploads subtree replaced the live one
	LegacyLocation bool   // payload found somewhere other than backup/app.db
}

// Candidate locations for the database payload, in priority order, relative
// to the extracted archive root. The first is the current format; the rest
// are layouts older releases produced.
var dbCandidates = []string{
	"backup/app.db",
	"app.db",
	"backup/DB/app.db",
	"data/app.db",
}

// Source artifacts whose presence identifies a code backup rather than a
// data backup.
var codeMarkers = []string{
	"streamlit_app.py",
	"backup/streamlit_app.py",
	"go.mod",
	"main.go",
}

// Restore replaces the entire persisted state from a backup archive. It
// tolerates legacy layouts: the database payload is located by an ordered
// candidate search and, failing that, an extension scan. An archive holding
// application source instead of data fails with ErrCodeBackup; any other
// unlocatable payload fails with ErrInvalidArchive. The database file is
// replaced atomically (write-temp-then-rename), the upload root is wholly
// replaced when the archive carries one, and the schema reconcile runs
// unconditionally afterwards so payloads from older versions gain missing
// tables and columns. The scratch directory is removed on every exit path.
func (s *Service) Restore(archiveBytes []byte) (*RestoreResult, error) {
	if s.openStore == nil {
		return nil, fmt.Errorf("restore requires a store opener")
	}
	res := &RestoreResult{State: StateReceived}
	s.logger.Info("restore started", "bytes", len(archiveBytes))

	// Encrypted full backups are anything that is not already a zip.
	if !isZipData(archiveBytes) {
		if s.encryptor == nil {
			if isAgeCiphertext(archiveBytes) {
				res.State = StateFailed
				return res, fmt.Errorf("archive is encrypted and no encryption is configured: %w", ErrInvalidArchive)
			}
			// Fall through; the zip reader produces the diagnosis.
		} else {
			var plain bytes.Buffer
			if err := s.encryptor.Decrypt(bytes.NewReader(archiveBytes), &plain); err != nil {
				res.State = StateFailed
				return res, fmt.Errorf("decrypting archive: %w", err)
			}
			archiveBytes = plain.Bytes()
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	scratch, err := os.MkdirTemp("", "faenadoc-restore-*")
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := extractAll(zr, scratch); err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	res.State = StateExtracted

	dbPath, legacy, err := locateDatabase(scratch)
	if err != nil {
		res.State = StateFailed
		return res, err
	}
	rel, _ := filepath.Rel(scratch, dbPath)
	res.State = StateDataLocated
	res.DatabaseEntry = filepath.ToSlash(rel)
	res.LegacyLocation = legacy
	s.logger.Info("database payload located", "entry", res.DatabaseEntry, "legacy", legacy)

	livePath := s.store.Path()
	if err := s.store.Close(); err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("closing live store: %w", err)
	}
	if err := replaceFileAtomic(dbPath, livePath); err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("replacing database: %w", err)
	}
	res.State = StateDataReplaced

	if src := locateUploads(scratch); src != "" {
		if err := replaceTree(src, s.uploadRoot); err != nil {
			res.State = StateFailed
			return res, fmt.Errorf("replacing upload root: %w", err)
		}
		res.State = StateFilesReplaced
		res.FilesReplaced = true
	}

	// Reopening runs the additive schema reconcile, so a payload from an
	// older version gains the tables and columns this version expects.
	store, err := s.openStore(livePath)
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("reopening store: %w", err)
	}
	s.store = store
	res.State = StateMigrated

	res.State = StateDone
	s.logger.Info("restore complete", "entry", res.DatabaseEntry, "files_replaced", res.FilesReplaced)
	return res, nil
}

const ageHeader = "age-encryption.org/v1"

func isAgeCiphertext(b []byte) bool {
	return len(b) >= len(ageHeader) && string(b[:len(ageHeader)]) == ageHeader
}

func isZipData(b []byte) bool {
	return bytes.HasPrefix(b, []byte("PK"))
}

// extractAll unpacks the archive under dest, refusing entries that would
// escape it.
func extractAll(zr *zip.Reader, dest string) error {
	for _, f := range zr.File {
		name := filepath.FromSlash(f.Name)
		target := filepath.Join(dest, name)
		if !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return fmt.Errorf("entry escapes archive root: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening entry %s: %w", f.Name, err)
		}
		out, err := os.Create(target)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("extracting entry %s: %w", f.Name, err)
		}
	}
	return nil
}

// locateDatabase finds the structured-data payload under the extracted
// archive root: exact candidates first, then a scan for any file with a
// database extension. When nothing matches, the presence of source artifacts
// turns the failure into the distinct code-backup diagnosis.
func locateDatabase(root string) (path string, legacy bool, err error) {
	for i, rel := range dbCandidates {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if fileExists(p) {
			return p, i > 0, nil
		}
	}

	var found string
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".db", ".sqlite", ".sqlite3":
			found = p
		}
		return nil
	})
	if found != "" {
		return found, true, nil
	}

	for _, rel := range codeMarkers {
		if fileExists(filepath.Join(root, filepath.FromSlash(rel))) {
			return "", false, ErrCodeBackup
		}
	}
	return "", false, fmt.Errorf("%w: no database payload (.db/.sqlite) in archive", ErrInvalidArchive)
}

// locateUploads returns the uploads subtree inside the extracted archive,
// checking the current root name before the legacy one. Empty when the
// archive carries no file tree (auto backups do not).
func locateUploads(root string) string {
	for _, rel := range []string{"backup/uploads", "uploads"} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return ""
}

// replaceFileAtomic moves src over dest via a temp file in dest's directory
// followed by a rename, so the live path never holds a half-written file.
func replaceFileAtomic(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".restore-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	in, err := os.Open(src)
	if err != nil {
		tmp.Close()
		return err
	}
	_, err = io.Copy(tmp, in)
	in.Close()
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return err
	}
	success = true
	return nil
}

// replaceTree removes dest and copies src in its place.
func replaceTree(src, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
