package faena_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"faenadoc/internal/faena"
	"faenadoc/internal/model"
	"faenadoc/internal/testutil"
)

func TestService_BuildMonthlyArchive(t *testing.T) {
	t.Run("empty month returns ErrNoSites", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-10")

		_, _, err := f.Service.BuildMonthlyArchive(2026, 3, true)
		if !errors.Is(err, faena.ErrNoSites) {
			t.Errorf("error = %v, want ErrNoSites", err)
		}
	})

	t.Run("selects sites by start month only", func(t *testing.T) {
		f := testutil.NewFixture(t)
		inMonth := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-10")
		if _, err := f.Service.Store().CreateSite(&model.Site{
			ClientID: inMonth.ClientID, Name: "Planta Sur",
			StartDate: "2026-02-01", Status: model.SiteActive,
		}); err != nil {
			t.Fatalf("creating site: %v", err)
		}

		data, ym, err := f.Service.BuildMonthlyArchive(2026, 1, false)
		if err != nil {
			t.Fatalf("BuildMonthlyArchive() error = %v", err)
		}
		if ym != "2026-01" {
			t.Errorf("ym = %q, want %q", ym, "2026-01")
		}

		entries := zipEntries(t, data)
		index, ok := entries["2026-01/00_Index_Mes.txt"]
		if !ok {
			t.Fatalf("month index missing, entries = %v", keys(entries))
		}
		if !strings.Contains(index, "EXPORT MENSUAL: 2026-01") {
			t.Errorf("index header wrong:\n%s", index)
		}
		if !strings.Contains(index, "FAENAS INCLUIDAS: 1") {
			t.Errorf("index count wrong:\n%s", index)
		}
		if strings.Contains(index, "Planta Sur") {
			t.Errorf("site from another month included:\n%s", index)
		}
	})

	t.Run("global documents appear once at the root", func(t *testing.T) {
		f := testutil.NewFixture(t)
		first := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-10")
		if _, err := f.Service.Store().CreateSite(&model.Site{
			ClientID: first.ClientID, Name: "Planta Sur",
			StartDate: "2026-01-20", Status: model.SiteActive,
		}); err != nil {
			t.Fatalf("creating site: %v", err)
		}
		f.AddCompanyDoc(t, 0, "CERTIFICADO_CUMPLIMIENTO_LABORAL")

		data, _, err := f.Service.BuildMonthlyArchive(2026, 1, true)
		if err != nil {
			t.Fatalf("BuildMonthlyArchive() error = %v", err)
		}
		entries := zipEntries(t, data)

		globalCount := 0
		for name := range entries {
			if strings.Contains(name, "certificado_cumplimiento_laboral") {
				globalCount++
				if !strings.HasPrefix(name, "2026-01/00_Documentos_Empresa_Global/") {
					t.Errorf("global document outside root folder: %s", name)
				}
			}
		}
		if globalCount != 1 {
			t.Errorf("global document count = %d, want 1", globalCount)
		}
	})

	t.Run("per-site subtrees use the standard layout", func(t *testing.T) {
		f := testutil.NewFixture(t)
		site := f.CreateSite(t, "Minera Norte", "Puerto Seco", "2026-01-10")
		w := f.CreateWorker(t, site.ID, "11111111-1", "Ana", "Rojas")
		f.AddWorkerDoc(t, w.ID, "IRL")

		data, _, err := f.Service.BuildMonthlyArchive(2026, 1, false)
		if err != nil {
			t.Fatalf("BuildMonthlyArchive() error = %v", err)
		}
		entries := zipEntries(t, data)

		prefix := "2026-01/FAENA_" + strconv.FormatInt(site.ID, 10) + "_puerto_seco/"
		for _, want := range []string{
			prefix + "99_Index_Pendientes.txt",
			prefix + "03_Trabajadores/rojas_ana_11111111_1/irl/IRL.pdf",
		} {
			if _, ok := entries[want]; !ok {
				t.Errorf("entry %q missing, have %v", want, keys(entries))
			}
		}
	})
}
