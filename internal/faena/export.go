package faena

import (
	"bytes"
	"fmt"

	"faenadoc/internal/model"
)

// PersistExport writes a previously built site archive to the vault under
// exports/faena_<id>/ with a timestamped name, and appends the history row
// with its hash and size. Builders never persist on their own; callers
// invoke this after a successful build.
func (s *Service) PersistExport(siteID int64, zipBytes []byte, siteName string) (*model.ExportRecord, error) {
	now := s.clock.Now()
	name := fmt.Sprintf("exports/faena_%d/faena_%d_%s_%s.zip", siteID, siteID, SanitizeSegment(siteName), stamp(now))

	if err := s.vault.Put(name, bytes.NewReader(zipBytes), int64(len(zipBytes))); err != nil {
		return nil, fmt.Errorf("storing export: %w", err)
	}

	rec, err := s.store.AppendExport(&model.ExportRecord{
		SiteID:    siteID,
		Path:      name,
		SHA256:    HashBytes(zipBytes),
		SizeBytes: int64(len(zipBytes)),
		CreatedAt: isoTime(now),
	})
	if err != nil {
		return nil, fmt.Errorf("recording export: %w", err)
	}

	s.logger.Info("export persisted", "site_id", siteID, "artifact", name, "bytes", len(zipBytes))
	return rec, nil
}

// PersistMonthlyExport is the monthly counterpart of PersistExport, keyed by
// "YYYY-MM" instead of a site.
func (s *Service) PersistMonthlyExport(yearMonth string, zipBytes []byte) (*model.ExportRecord, error) {
	now := s.clock.Now()
	name := fmt.Sprintf("exports/mes/mes_%s_%s.zip", yearMonth, stamp(now))

	if err := s.vault.Put(name, bytes.NewReader(zipBytes), int64(len(zipBytes))); err != nil {
		return nil, fmt.Errorf("storing monthly export: %w", err)
	}

	rec, err := s.store.AppendMonthlyExport(&model.ExportRecord{
		YearMonth: yearMonth,
		Path:      name,
		SHA256:    HashBytes(zipBytes),
		SizeBytes: int64(len(zipBytes)),
		CreatedAt: isoTime(now),
	})
	if err != nil {
		return nil, fmt.Errorf("recording monthly export: %w", err)
	}

	s.logger.Info("monthly export persisted", "year_month", yearMonth, "artifact", name, "bytes", len(zipBytes))
	return rec, nil
}
