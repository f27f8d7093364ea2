package faena_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"faenadoc/internal/faena"
	"faenadoc/internal/model"
	"faenadoc/internal/testutil"
)

// zipEntries maps entry name to content for assertions.
func zipEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading entry %s: %v", f.Name, err)
		}
		out[f.Name] = string(b)
	}
	return out
}

func TestService_BuildSiteArchive(t *testing.T) {
	t.Run("unknown site returns ErrNotFound", func(t *testing.T) {
		f := testutil.NewFixture(t)
		_, _, err := f.Service.BuildSiteArchive(99, faena.AllArchiveOptions())
		if !errors.Is(err, faena.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("manifest is always present", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")

		data, name, err := f.Service.BuildSiteArchive(site.ID, faena.ArchiveOptions{})
		if err != nil {
			t.Fatalf("BuildSiteArchive() error = %v", err)
		}
		if name != "Puerto Seco" {
			t.Errorf("site name = %q, want %q", name, "Puerto Seco")
		}

		entries := zipEntries(t, data)
		manifest, ok := entries["99_Index_Pendientes.txt"]
		if !ok {
			t.Fatalf("manifest missing, entries = %v", keys(entries))
		}
		for _, want := range []string{
			"MANDANTE: Minera Norte",
			"FAENA: Puerto Seco",
			"ESTADO: ACTIVA",
			"INICIO: 2026-01-01 | TERMINO: -",
			"CONTRATO_FAENA: (sin contrato cargado)",
			"- (sin trabajadores asignados)",
			"PENDIENTES DOCUMENTOS EMPRESA (POR FAENA):",
		} {
			if !strings.Contains(manifest, want) {
				t.Errorf("manifest missing line %q\n%s", want, manifest)
			}
		}
	})

	t.Run("manifest reports per-worker pendings", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")
		full := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
		for _, docType := range model.RequiredWorkerDocTypes {
			f.AddWorkerDoc(t, full.ID, docType)
		}
		f.CreateWorker(t, site.ID, "22222222-2", "Luis", "Soto")
		f.AddCompanyDoc(t, site.ID, "CERTIFICADO_CUMPLIMIENTO_LABORAL")

		data, _, err := f.Service.BuildSiteArchive(site.ID, faena.ArchiveOptions{})
		if err != nil {
			t.Fatalf("BuildSiteArchive() error = %v", err)
		}
		manifest := zipEntries(t, data)["99_Index_Pendientes.txt"]

		if !strings.Contains(manifest, "* Rojas Ana (11111111-1): OK") {
			t.Errorf("compliant worker not marked OK:\n%s", manifest)
		}
		if !strings.Contains(manifest, "* Soto Luis (22222222-2): faltan REGISTRO_EPP, ENTREGA_RIOHS") {
			t.Errorf("pending worker line wrong:\n%s", manifest)
		}
		if !strings.Contains(manifest, "* faltan: CERTIFICADO_ACCIDENTABILIDAD") {
			t.Errorf("company pendings wrong:\n%s", manifest)
		}
	})

	t.Run("full archive layout", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")

		w := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
		f.AddWorkerDoc(t, w.ID, "IRL")
		f.AddCompanyDoc(t, site.ID, "CERTIFICADO_ACCIDENTABILIDAD")
		f.AddCompanyDoc(t, 0, "CERTIFICADO_CUMPLIMIENTO_LABORAL")

		annexPath := f.WriteUpload(t, "anexos/acta.pdf", []byte("acta"))
		if _, err := f.Service.Store().AddAnnex(&model.Annex{
			SiteID: site.ID, Name: "Acta", Path: annexPath,
			SHA256: faena.HashBytes([]byte("acta")), CreatedAt: "2026-01-15T10:30:00Z",
		}); err != nil {
			t.Fatalf("adding annex: %v", err)
		}

		data, _, err := f.Service.BuildSiteArchive(site.ID, faena.AllArchiveOptions())
		if err != nil {
			t.Fatalf("BuildSiteArchive() error = %v", err)
		}
		entries := zipEntries(t, data)

		for _, want := range []string{
			"99_Index_Pendientes.txt",
			"01_Anexos_Faena/acta.pdf",
			"02_Documentos_Empresa/certificado_cumplimiento_laboral/CERTIFICADO_CUMPLIMIENTO_LABORAL.pdf",
			"02_Documentos_Empresa_Faena/certificado_accidentabilidad/CERTIFICADO_ACCIDENTABILIDAD.pdf",
			"03_Trabajadores/rojas_ana_11111111_1/irl/IRL.pdf",
		} {
			if _, ok := entries[want]; !ok {
				t.Errorf("entry %q missing, have %v", want, keys(entries))
			}
		}
	})

	t.Run("category toggles and type filters", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")
		w := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
		f.AddWorkerDoc(t, w.ID, "IRL")
		f.AddWorkerDoc(t, w.ID, "FINIQUITO")
		f.AddCompanyDoc(t, 0, "CERTIFICADO_CUMPLIMIENTO_LABORAL")

		opts := faena.ArchiveOptions{
			IncludeWorkerDocs: true,
			WorkerTypes:       []string{"IRL"},
		}
		data, _, err := f.Service.BuildSiteArchive(site.ID, opts)
		if err != nil {
			t.Fatalf("BuildSiteArchive() error = %v", err)
		}
		entries := zipEntries(t, data)

		if _, ok := entries["03_Trabajadores/rojas_ana_11111111_1/irl/IRL.pdf"]; !ok {
			t.Errorf("filtered-in worker doc missing, have %v", keys(entries))
		}
		for name := range entries {
			if strings.Contains(name, "finiquito") {
				t.Errorf("filtered-out type present: %s", name)
			}
			if strings.HasPrefix(name, "02_Documentos_Empresa/") {
				t.Errorf("excluded category present: %s", name)
			}
		}
	})

	t.Run("missing file on disk is skipped", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")
		w := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
		if _, err := f.Service.Store().AddWorkerDocument(&model.WorkerDocument{
			WorkerID: w.ID, DocType: "IRL", FileName: "gone.pdf",
			Path: "/nonexistent/gone.pdf", SHA256: "x", CreatedAt: "2026-01-15T10:30:00Z",
		}); err != nil {
			t.Fatalf("adding document: %v", err)
		}

		data, _, err := f.Service.BuildSiteArchive(site.ID, faena.AllArchiveOptions())
		if err != nil {
			t.Fatalf("BuildSiteArchive() error = %v", err)
		}
		for name := range zipEntries(t, data) {
			if strings.Contains(name, "gone.pdf") {
				t.Errorf("missing file appeared in archive: %s", name)
			}
		}
	})

	t.Run("rebuilding yields identical bytes", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-01")
		w := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
		f.AddWorkerDoc(t, w.ID, "IRL")

		a, _, err := f.Service.BuildSiteArchive(site.ID, faena.AllArchiveOptions())
		if err != nil {
			t.Fatalf("first build error = %v", err)
		}
		b, _, err := f.Service.BuildSiteArchive(site.ID, faena.AllArchiveOptions())
		if err != nil {
			t.Fatalf("second build error = %v", err)
		}
		if faena.HashBytes(a) != faena.HashBytes(b) {
			t.Error("rebuild produced different bytes for unchanged state")
		}
	})
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
