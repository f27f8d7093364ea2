package faena

import (
	"fmt"

	"faenadoc/internal/model"
)

// ExportHistory returns the export records for one site, or the monthly
// export records when siteID is 0.
func (s *Service) ExportHistory(siteID int64) ([]*model.ExportRecord, error) {
	if siteID == 0 {
		recs, err := s.store.ListMonthlyExports()
		if err != nil {
			return nil, fmt.Errorf("listing monthly exports: %w", err)
		}
		return recs, nil
	}
	recs, err := s.store.ListExports(siteID)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return recs, nil
}

// AutoBackupHistory returns the auto-backup records, newest first.
func (s *Service) AutoBackupHistory() ([]*model.AutoBackupRecord, error) {
	recs, err := s.store.ListAutoBackups()
	if err != nil {
		return nil, fmt.Errorf("listing auto backups: %w", err)
	}
	return recs, nil
}
