package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"faenadoc/internal/database"
	"faenadoc/internal/faena"
	"faenadoc/internal/model"
	"faenadoc/internal/vault"
)

// Fixture wires a faena.Service over a real SQLite database in a temp
// directory, an in-memory vault and a stub clock.
type Fixture struct {
	Store      faena.Store
	Vault      *vault.MemoryVault
	Clock      *StubClock
	Service    *faena.Service
	DBPath     string
	UploadRoot string
}

// NewFixture creates a Fixture with auto backups enabled and no encryption.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureWith(t, faena.BackupPolicy{Enabled: true, KeepLast: faena.DefaultKeepLast}, nil)
}

// NewFixtureWith creates a Fixture with the given backup policy and
// encryptor.
func NewFixtureWith(t *testing.T, policy faena.BackupPolicy, enc faena.Encryptor) *Fixture {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")
	uploadRoot := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploadRoot, 0755); err != nil {
		t.Fatalf("creating upload root: %v", err)
	}

	store, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	f := &Fixture{
		Store:      store,
		Vault:      vault.NewMemoryVault(),
		Clock:      FixedClock(),
		DBPath:     dbPath,
		UploadRoot: uploadRoot,
	}
	openStore := func(path string) (faena.Store, error) {
		return database.Open(path)
	}
	f.Service = faena.NewService(store, f.Vault, uploadRoot, enc, policy, openStore,
		faena.NewNopLogger(), f.Clock)

	t.Cleanup(func() {
		// Restore may have swapped the store; close whatever is live.
		f.Service.Store().Close()
	})
	return f
}

// CreateSite registers a client and a site under it, returning the site.
func (f *Fixture) CreateSite(t *testing.T, clientName, siteName, startDate string) *model.Site {
	t.Helper()
	c, err := f.Service.Store().CreateClient(clientName)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	site, err := f.Service.Store().CreateSite(&model.Site{
		ClientID:  c.ID,
		Name:      siteName,
		StartDate: startDate,
		Status:    model.SiteActive,
	})
	if err != nil {
		t.Fatalf("creating site: %v", err)
	}
	return site
}

// CreateWorker registers a worker and assigns them to the site.
func (f *Fixture) CreateWorker(t *testing.T, siteID int64, rut, given, family string) *model.Worker {
	t.Helper()
	w, err := f.Service.Store().CreateWorker(&model.Worker{
		RUT:         rut,
		GivenNames:  given,
		FamilyNames: family,
	})
	if err != nil {
		t.Fatalf("creating worker: %v", err)
	}
	_, err = f.Service.Store().CreateAssignment(&model.Assignment{
		SiteID:   siteID,
		WorkerID: w.ID,
		Status:   model.AssignmentActive,
	})
	if err != nil {
		t.Fatalf("assigning worker: %v", err)
	}
	return w
}

// AddWorkerDoc writes a real file under the upload root and records it as a
// worker document of the given type.
func (f *Fixture) AddWorkerDoc(t *testing.T, workerID int64, docType string) *model.WorkerDocument {
	t.Helper()
	path := f.WriteUpload(t, fmt.Sprintf("trabajador_%d/%s.pdf", workerID, docType),
		[]byte("doc "+docType))
	d, err := f.Service.Store().AddWorkerDocument(&model.WorkerDocument{
		WorkerID:  workerID,
		DocType:   docType,
		FileName:  filepath.Base(path),
		Path:      path,
		SHA256:    faena.HashBytes([]byte("doc " + docType)),
		CreatedAt: "2026-01-15T10:30:00Z",
	})
	if err != nil {
		t.Fatalf("adding worker document: %v", err)
	}
	return d
}

// AddCompanyDoc records a company document; siteID 0 means global.
func (f *Fixture) AddCompanyDoc(t *testing.T, siteID int64, docType string) *model.CompanyDocument {
	t.Helper()
	path := f.WriteUpload(t, fmt.Sprintf("empresa_%d/%s.pdf", siteID, docType),
		[]byte("company "+docType))
	d, err := f.Service.Store().AddCompanyDocument(&model.CompanyDocument{
		SiteID:    siteID,
		DocType:   docType,
		FileName:  filepath.Base(path),
		Path:      path,
		SHA256:    faena.HashBytes([]byte("company " + docType)),
		CreatedAt: "2026-01-15T10:30:00Z",
	})
	if err != nil {
		t.Fatalf("adding company document: %v", err)
	}
	return d
}

// WriteUpload places a file under the upload root and returns its absolute
// path.
func (f *Fixture) WriteUpload(t *testing.T, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(f.UploadRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating upload dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing upload: %v", err)
	}
	return path
}
