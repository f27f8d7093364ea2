package faena

import (
	"fmt"
	"time"

	"faenadoc/internal/model"
)

// WorkerPending is one worker's compliance state on a site: the ordered list
// of required document types still missing. An empty Missing slice means the
// worker is fully compliant.
type WorkerPending struct {
	WorkerID int64
	Label    string // "APELLIDOS NOMBRES (RUT)"
	Missing  []string
}

// ProgressRow is one site's aggregate compliance state, used for listings
// and semaphore displays.
type ProgressRow struct {
	SiteID       int64
	SiteName     string
	Status       string
	StartDate    string
	EndDate      string
	ClientName   string
	Workers      int
	WorkersOK    int
	CoveragePct  float64 // 0..100, one decimal
	MissingTotal int
}

// Semaphore levels derived from a ProgressRow.
const (
	SemaphoreCritical = "CRITICO"
	SemaphorePending  = "PENDIENTE"
	SemaphoreOK       = "OK"
)

// MissingWorkerDocuments reports, per worker assigned to the site (any
// assignment status), the required document types with no upload of that
// type. The slice is empty when no workers are assigned — distinct from a
// populated slice whose entries all have empty Missing lists, which means
// fully compliant. Read-only.
func (s *Service) MissingWorkerDocuments(siteID int64) ([]WorkerPending, error) {
	workers, err := s.store.ListAssignedWorkers(siteID)
	if err != nil {
		return nil, fmt.Errorf("listing assigned workers: %w", err)
	}

	out := make([]WorkerPending, 0, len(workers))
	for _, w := range workers {
		have, err := s.workerDocTypes(w.ID)
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, req := range model.RequiredWorkerDocTypes {
			if !have[req] {
				missing = append(missing, req)
			}
		}
		out = append(out, WorkerPending{
			WorkerID: w.ID,
			Label:    fmt.Sprintf("%s %s (%s)", w.FamilyNames, w.GivenNames, w.RUT),
			Missing:  missing,
		})
	}
	return out, nil
}

// MissingCompanyDocuments reports the required company document types with
// no per-site upload for the site, in catalog order.
func (s *Service) MissingCompanyDocuments(siteID int64) ([]string, error) {
	docs, err := s.store.ListCompanyDocuments(siteID)
	if err != nil {
		return nil, fmt.Errorf("listing per-site company documents: %w", err)
	}
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		present[d.DocType] = true
	}
	var missing []string
	for _, req := range model.RequiredCompanyDocTypes {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	return missing, nil
}

// SiteProgress returns one row per site, newest first, with worker and
// coverage aggregates. Sites with no workers report zeroed metrics rather
// than failing.
func (s *Service) SiteProgress() ([]ProgressRow, error) {
	sites, err := s.store.ListSites()
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}

	required := len(model.RequiredWorkerDocTypes)
	rows := make([]ProgressRow, 0, len(sites))
	for _, site := range sites {
		detail, err := s.store.GetSiteDetail(site.ID)
		if err != nil {
			return nil, fmt.Errorf("loading site %d: %w", site.ID, err)
		}
		row := ProgressRow{
			SiteID:    site.ID,
			SiteName:  site.Name,
			Status:    site.Status,
			StartDate: site.StartDate,
			EndDate:   site.EndDate,
		}
		if detail != nil {
			row.ClientName = detail.ClientName
		}

		workers, err := s.store.ListAssignedWorkers(site.ID)
		if err != nil {
			return nil, fmt.Errorf("listing assigned workers for site %d: %w", site.ID, err)
		}
		row.Workers = len(workers)

		presentSum := 0
		for _, w := range workers {
			have, err := s.workerDocTypes(w.ID)
			if err != nil {
				return nil, err
			}
			present := 0
			for _, req := range model.RequiredWorkerDocTypes {
				if have[req] {
					present++
				}
			}
			presentSum += present
			if present >= required {
				row.WorkersOK++
			}
		}

		row.MissingTotal = row.Workers*required - presentSum
		if row.Workers > 0 {
			pct := float64(presentSum) / float64(row.Workers*required) * 100.0
			row.CoveragePct = roundTenth(pct)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Semaphore classifies a progress row. A site with no workers is always
// CRITICAL, even though its coverage fraction is vacuously undefined.
func Semaphore(r ProgressRow) string {
	if r.Workers == 0 {
		return SemaphoreCritical
	}
	if r.MissingTotal == 0 && r.CoveragePct >= 100 {
		return SemaphoreOK
	}
	if r.CoveragePct >= 70 {
		return SemaphorePending
	}
	return SemaphoreCritical
}

// ExpiringMedicalExams lists workers whose medical exam expires within the
// window (inclusive), or has already expired. Workers without a recorded
// expiry are skipped. This listing never feeds coverage arithmetic.
func (s *Service) ExpiringMedicalExams(withinDays int) ([]*model.Worker, error) {
	workers, err := s.store.ListWorkers()
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	cutoff := s.clock.Now().UTC().AddDate(0, 0, withinDays)
	var out []*model.Worker
	for _, w := range workers {
		if w.MedicalExamDue == "" {
			continue
		}
		due, err := time.Parse("2006-01-02", w.MedicalExamDue)
		if err != nil {
			continue
		}
		if !due.After(cutoff) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *Service) workerDocTypes(workerID int64) (map[string]bool, error) {
	docs, err := s.store.ListWorkerDocuments(workerID)
	if err != nil {
		return nil, fmt.Errorf("listing documents for worker %d: %w", workerID, err)
	}
	have := make(map[string]bool, len(docs))
	for _, d := range docs {
		have[d.DocType] = true
	}
	return have, nil
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
