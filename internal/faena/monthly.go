package faena

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// BuildMonthlyArchive assembles one ZIP covering every site whose start date
// falls in the given calendar month, and returns the bytes plus the
// "YYYY-MM" key. Sites appear newest first. Global company documents are
// written exactly once at the archive root when includeGlobal is set, never
// repeated per site. Returns ErrNoSites when the month is empty.
func (s *Service) BuildMonthlyArchive(year, month int, includeGlobal bool) ([]byte, string, error) {
	ym := fmt.Sprintf("%04d-%02d", year, month)

	sites, err := s.store.ListSiteDetailsByMonth(ym)
	if err != nil {
		return nil, "", fmt.Errorf("listing sites for %s: %w", ym, err)
	}
	if len(sites) == 0 {
		return nil, "", fmt.Errorf("%s: %w", ym, ErrNoSites)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeZipText(zw, ym+"/"+monthIndexName, buildMonthIndex(ym, sites)); err != nil {
		zw.Close()
		return nil, "", err
	}

	if includeGlobal {
		if err := s.writeCompanyDocs(zw, ym+"/00_Documentos_Empresa_Global", 0, nil); err != nil {
			zw.Close()
			return nil, "", err
		}
	}

	// Per-site subtrees reuse the standard layout, without repeating the
	// global company documents.
	opts := AllArchiveOptions()
	opts.IncludeGlobalCompanyDocs = false
	for _, detail := range sites {
		prefix := fmt.Sprintf("%s/FAENA_%d_%s/", ym, detail.ID, SanitizeSegment(detail.Name))
		if err := s.writeSiteTree(zw, prefix, detail, opts); err != nil {
			zw.Close()
			return nil, "", err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing archive: %w", err)
	}

	s.logger.Info("monthly archive built", "year_month", ym, "sites", len(sites), "bytes", buf.Len())
	return buf.Bytes(), ym, nil
}

func buildMonthIndex(ym string, sites []*SiteDetail) string {
	lines := []string{
		"EXPORT MENSUAL: " + ym,
		fmt.Sprintf("FAENAS INCLUIDAS: %d", len(sites)),
		"",
	}
	for _, d := range sites {
		lines = append(lines, fmt.Sprintf("- %d: %s / %s (%s) inicio %s", d.ID, d.ClientName, d.Name, d.Status, d.StartDate))
	}
	return strings.Join(lines, "\n")
}
