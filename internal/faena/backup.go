package faena

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"faenadoc/internal/model"
)

// Full backup archive layout. backupRoot prefixes every entry so that an
// extracted archive never spills into the directory it lands in.
const (
	backupRoot    = "backup"
	backupDBEntry = backupRoot + "/app.db"
	backupMeta    = backupRoot + "/META.txt"
)

// FullSnapshot serializes the entire system — a consistent copy of the
// database plus every file under the upload root — into one ZIP. This is the
// disaster-recovery path; nothing is filtered and nothing is recorded.
func (s *Service) FullSnapshot() ([]byte, error) {
	dbBytes, err := s.snapshotDB()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(backupDBEntry)
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("creating database entry: %w", err)
	}
	if _, err := w.Write(dbBytes); err != nil {
		zw.Close()
		return nil, fmt.Errorf("writing database entry: %w", err)
	}

	if err := s.addUploadTree(zw); err != nil {
		zw.Close()
		return nil, err
	}

	meta := fmt.Sprintf("created_at_utc=%s\n", isoTime(s.clock.Now()))
	if err := writeZipText(zw, backupMeta, meta); err != nil {
		zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing backup: %w", err)
	}

	s.logger.Info("full snapshot built", "bytes", buf.Len())
	return buf.Bytes(), nil
}

// FullSnapshotEncrypted wraps FullSnapshot with the configured encryptor.
func (s *Service) FullSnapshotEncrypted() ([]byte, error) {
	if s.encryptor == nil {
		return nil, fmt.Errorf("encryption is not configured")
	}
	plain, err := s.FullSnapshot()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := s.encryptor.Encrypt(bytes.NewReader(plain), &out); err != nil {
		return nil, fmt.Errorf("encrypting backup: %w", err)
	}
	return out.Bytes(), nil
}

// addUploadTree writes every regular file under the upload root into the
// archive as backup/uploads/<relative path>. A missing upload root is fine:
// a fresh system has no uploads yet.
func (s *Service) addUploadTree(zw *zip.Writer) error {
	root := s.uploadRoot
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A file pruned mid-walk degrades to skipping it.
			s.logger.Warn("skipping path during backup", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping file during backup", "path", path, "err", err)
			return nil
		}
		entry := backupRoot + "/uploads/" + filepath.ToSlash(rel)
		w, err := zw.Create(entry)
		if err != nil {
			return fmt.Errorf("creating entry %s: %w", entry, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing entry %s: %w", entry, err)
		}
		return nil
	})
}

// AutoSnapshot serializes only the database, stores it in the vault under
// auto_backups/ with a name derived from tag, appends the history row, and
// prunes history past the retention limit. Disabled policies make this a
// silent no-op returning (nil, nil). Designed to be cheap enough to run
// after every mutating action.
func (s *Service) AutoSnapshot(tag string) (*model.AutoBackupRecord, error) {
	if !s.policy.Enabled {
		return nil, nil
	}

	dbBytes, err := s.snapshotDB()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	name := fmt.Sprintf("auto_backups/auto_db_%s_%s.db", stamp(now), SanitizeSegment(tag))

	if err := s.vault.Put(name, bytes.NewReader(dbBytes), int64(len(dbBytes))); err != nil {
		return nil, fmt.Errorf("storing auto backup: %w", err)
	}

	rec, err := s.store.AppendAutoBackup(&model.AutoBackupRecord{
		Tag:       tag,
		Path:      name,
		SHA256:    HashBytes(dbBytes),
		SizeBytes: int64(len(dbBytes)),
		CreatedAt: isoTime(now),
	})
	if err != nil {
		return nil, fmt.Errorf("recording auto backup: %w", err)
	}

	s.pruneAutoBackups()

	s.logger.Info("auto snapshot stored", "tag", tag, "artifact", name, "bytes", len(dbBytes))
	return rec, nil
}

// pruneAutoBackups keeps the newest KeepLast auto-backup records, deleting
// the artifacts and rows beyond that. Failures here never fail the snapshot
// that triggered the pruning; an artifact already gone from the vault is the
// normal case after a restore of older state.
func (s *Service) pruneAutoBackups() {
	recs, err := s.store.ListAutoBackups()
	if err != nil {
		s.logger.Warn("retention: listing auto backups failed", "err", err)
		return
	}
	if len(recs) <= s.policy.KeepLast {
		return
	}

	var ids []int64
	for _, r := range recs[s.policy.KeepLast:] {
		if err := s.vault.Delete(r.Path); err != nil {
			s.logger.Warn("retention: deleting artifact failed", "artifact", r.Path, "err", err)
		}
		ids = append(ids, r.ID)
	}
	if err := s.store.DeleteAutoBackups(ids); err != nil {
		s.logger.Warn("retention: deleting history rows failed", "err", err)
		return
	}
	s.logger.Debug("retention pruned auto backups", "deleted", len(ids), "kept", s.policy.KeepLast)
}

// snapshotDB writes a consistent copy of the database to a scratch file and
// returns its bytes.
func (s *Service) snapshotDB() ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "faenadoc-snap-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dest := filepath.Join(tmpDir, "app.db")
	if err := s.store.SnapshotTo(dest); err != nil {
		return nil, fmt.Errorf("snapshotting database: %w", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		return nil, fmt.Errorf("reading database snapshot: %w", err)
	}
	return data, nil
}
