package faena

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Archive layout. Folder names are part of the export contract: auditors
// receive these bundles and the receiving side sorts by the numeric prefix.
const (
	manifestName      = "99_Index_Pendientes.txt"
	monthIndexName    = "00_Index_Mes.txt"
	contractFolder    = "00_Contrato_Faena"
	annexFolder       = "01_Anexos_Faena"
	companyFolder     = "02_Documentos_Empresa"
	siteCompanyFolder = "02_Documentos_Empresa_Faena"
	workerFolderRoot  = "03_Trabajadores"
)

// ArchiveOptions selects what goes into a site archive. The manifest is
// always included. A nil type filter admits every type; a non-nil filter
// admits only the listed types for that category.
type ArchiveOptions struct {
	IncludeContract          bool
	IncludeAnnexes           bool
	IncludeSiteCompanyDocs   bool
	IncludeGlobalCompanyDocs bool
	IncludeWorkerDocs        bool

	GlobalCompanyTypes []string
	SiteCompanyTypes   []string
	WorkerTypes        []string
}

// AllArchiveOptions includes every category with no type filtering.
func AllArchiveOptions() ArchiveOptions {
	return ArchiveOptions{
		IncludeContract:          true,
		IncludeAnnexes:           true,
		IncludeSiteCompanyDocs:   true,
		IncludeGlobalCompanyDocs: true,
		IncludeWorkerDocs:        true,
	}
}

// typeFilter is nil for "admit everything".
type typeFilter map[string]bool

func newTypeFilter(types []string) typeFilter {
	if types == nil {
		return nil
	}
	f := make(typeFilter, len(types))
	for _, t := range types {
		f[t] = true
	}
	return f
}

func (f typeFilter) admits(docType string) bool {
	return f == nil || f[docType]
}

// BuildSiteArchive assembles the export ZIP for one site and returns the
// bytes plus the site's display name. It is a pure function of current store
// state and the filesystem: nothing is recorded; use PersistExport for that.
// Returns ErrNotFound when the site does not exist. Documents whose recorded
// file is gone from disk are skipped, never fatal.
func (s *Service) BuildSiteArchive(siteID int64, opts ArchiveOptions) ([]byte, string, error) {
	detail, err := s.store.GetSiteDetail(siteID)
	if err != nil {
		return nil, "", fmt.Errorf("loading site %d: %w", siteID, err)
	}
	if detail == nil {
		return nil, "", fmt.Errorf("site %d: %w", siteID, ErrNotFound)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := s.writeSiteTree(zw, "", detail, opts); err != nil {
		zw.Close()
		return nil, "", err
	}

	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing archive: %w", err)
	}

	s.logger.Info("site archive built", "site_id", siteID, "bytes", buf.Len())
	return buf.Bytes(), detail.Name, nil
}

// writeSiteTree writes the manifest and the selected document categories for
// one site under prefix ("" for a standalone site export, "YYYY-MM/FAENA_…/"
// inside a monthly export).
func (s *Service) writeSiteTree(zw *zip.Writer, prefix string, detail *SiteDetail, opts ArchiveOptions) error {
	pendings, err := s.MissingWorkerDocuments(detail.ID)
	if err != nil {
		return err
	}
	missCompany, err := s.MissingCompanyDocuments(detail.ID)
	if err != nil {
		return err
	}

	if err := writeZipText(zw, prefix+manifestName, buildManifest(detail, pendings, missCompany)); err != nil {
		return err
	}

	if opts.IncludeContract && detail.ContractPath != "" {
		s.copyIntoZip(zw, prefix+contractFolder+"/"+filepath.Base(detail.ContractPath), detail.ContractPath)
	}

	if opts.IncludeAnnexes {
		annexes, err := s.store.ListAnnexes(detail.ID)
		if err != nil {
			return fmt.Errorf("listing annexes: %w", err)
		}
		for _, a := range annexes {
			s.copyIntoZip(zw, prefix+annexFolder+"/"+filepath.Base(a.Path), a.Path)
		}
	}

	if opts.IncludeGlobalCompanyDocs {
		if err := s.writeCompanyDocs(zw, prefix+companyFolder, 0, newTypeFilter(opts.GlobalCompanyTypes)); err != nil {
			return err
		}
	}

	if opts.IncludeSiteCompanyDocs {
		if err := s.writeCompanyDocs(zw, prefix+siteCompanyFolder, detail.ID, newTypeFilter(opts.SiteCompanyTypes)); err != nil {
			return err
		}
	}

	if opts.IncludeWorkerDocs {
		if err := s.writeWorkerDocs(zw, prefix, detail.ID, newTypeFilter(opts.WorkerTypes)); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) writeCompanyDocs(zw *zip.Writer, folder string, siteID int64, filter typeFilter) error {
	docs, err := s.store.ListCompanyDocuments(siteID)
	if err != nil {
		return fmt.Errorf("listing company documents: %w", err)
	}
	for _, d := range docs {
		if !filter.admits(d.DocType) {
			continue
		}
		name := folder + "/" + SanitizeSegment(d.DocType) + "/" + filepath.Base(d.Path)
		s.copyIntoZip(zw, name, d.Path)
	}
	return nil
}

func (s *Service) writeWorkerDocs(zw *zip.Writer, prefix string, siteID int64, filter typeFilter) error {
	workers, err := s.store.ListAssignedWorkers(siteID)
	if err != nil {
		return fmt.Errorf("listing assigned workers: %w", err)
	}
	for _, w := range workers {
		folder := prefix + workerFolderRoot + "/" + workerFolder(w.FamilyNames, w.GivenNames, w.RUT)
		docs, err := s.store.ListWorkerDocuments(w.ID)
		if err != nil {
			return fmt.Errorf("listing documents for worker %d: %w", w.ID, err)
		}
		for _, d := range docs {
			if !filter.admits(d.DocType) {
				continue
			}
			name := folder + "/" + SanitizeSegment(d.DocType) + "/" + filepath.Base(d.Path)
			s.copyIntoZip(zw, name, d.Path)
		}
	}
	return nil
}

// copyIntoZip writes the file at srcPath into the archive under name.
// Uploaded binaries may be pruned independently of their records, so a
// missing or unreadable file is logged and skipped.
func (s *Service) copyIntoZip(zw *zip.Writer, name, srcPath string) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		s.logger.Warn("skipping document, file unavailable", "path", srcPath, "err", err)
		return
	}
	w, err := zw.Create(name)
	if err != nil {
		s.logger.Warn("skipping document, archive entry failed", "entry", name, "err", err)
		return
	}
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("skipping document, archive write failed", "entry", name, "err", err)
	}
}

func writeZipText(zw *zip.Writer, name, text string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", name, err)
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", name, err)
	}
	return nil
}

// buildManifest renders the pending-items index embedded in every export.
// The wording is fixed: the receiving auditors parse these files by eye and
// by grep.
func buildManifest(detail *SiteDetail, pendings []WorkerPending, missCompany []string) string {
	var lines []string

	contractName := detail.ContractName
	if contractName == "" {
		contractName = "(sin contrato cargado)"
	}
	lines = append(lines,
		"MANDANTE: "+detail.ClientName,
		"FAENA: "+detail.Name,
		"ESTADO: "+detail.Status,
		"INICIO: "+detail.StartDate+" | TERMINO: "+orDash(detail.EndDate),
		"UBICACION: "+orDash(detail.Location),
		"CONTRATO_FAENA: "+contractName,
		"",
		"PENDIENTES DOCUMENTOS OBLIGATORIOS POR TRABAJADOR:",
	)

	if len(pendings) == 0 {
		lines = append(lines, "- (sin trabajadores asignados)")
	} else {
		for _, p := range pendings {
			if len(p.Missing) > 0 {
				lines = append(lines, fmt.Sprintf("* %s: faltan %s", p.Label, strings.Join(p.Missing, ", ")))
			} else {
				lines = append(lines, fmt.Sprintf("* %s: OK", p.Label))
			}
		}
	}

	lines = append(lines, "", "PENDIENTES DOCUMENTOS EMPRESA (POR FAENA):")
	if len(missCompany) > 0 {
		lines = append(lines, "* faltan: "+strings.Join(missCompany, ", "))
	} else {
		lines = append(lines, "* OK")
	}

	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
