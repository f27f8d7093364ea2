package faena

import "faenadoc/internal/model"

// SiteDetail is a site joined with the names an archive manifest needs.
type SiteDetail struct {
	model.Site
	ClientName   string
	ContractName string // empty when the site has no contract
	ContractPath string // empty when the contract has no file loaded
}

// Store provides access to the persisted records. Implementations own their
// serialization; the service never coordinates concurrent access itself.
//
// Lookup methods return (nil, nil) when the record does not exist.
type Store interface {
	// Clients and contracts.
	CreateClient(name string) (*model.Client, error)
	ListClients() ([]*model.Client, error)
	CreateContract(c *model.SiteContract) (*model.SiteContract, error)
	AttachContractFile(contractID int64, path, sha256, createdAt string) error
	DeleteContract(contractID int64) error

	// Sites.
	CreateSite(s *model.Site) (*model.Site, error)
	GetSiteDetail(siteID int64) (*SiteDetail, error)
	ListSites() ([]*model.Site, error)
	ListSiteDetailsByMonth(yearMonth string) ([]*SiteDetail, error)
	CloseSite(siteID int64, endDate string) error
	AddAnnex(a *model.Annex) (*model.Annex, error)
	ListAnnexes(siteID int64) ([]*model.Annex, error)

	// Workers and assignments.
	CreateWorker(w *model.Worker) (*model.Worker, error)
	FindWorkerByRUT(rut string) (*model.Worker, error)
	ListWorkers() ([]*model.Worker, error)
	CreateAssignment(a *model.Assignment) (*model.Assignment, error)
	// ListAssignedWorkers returns the workers holding an assignment to the
	// site, regardless of assignment status, ordered by family then given
	// names.
	ListAssignedWorkers(siteID int64) ([]*model.Worker, error)

	// Documents.
	AddWorkerDocument(d *model.WorkerDocument) (*model.WorkerDocument, error)
	ListWorkerDocuments(workerID int64) ([]*model.WorkerDocument, error)
	AddCompanyDocument(d *model.CompanyDocument) (*model.CompanyDocument, error)
	// ListCompanyDocuments returns global documents for siteID 0, per-site
	// documents otherwise.
	ListCompanyDocuments(siteID int64) ([]*model.CompanyDocument, error)

	// Export and backup history (append-only).
	AppendExport(r *model.ExportRecord) (*model.ExportRecord, error)
	ListExports(siteID int64) ([]*model.ExportRecord, error)
	AppendMonthlyExport(r *model.ExportRecord) (*model.ExportRecord, error)
	ListMonthlyExports() ([]*model.ExportRecord, error)
	AppendAutoBackup(r *model.AutoBackupRecord) (*model.AutoBackupRecord, error)
	// ListAutoBackups returns records newest first.
	ListAutoBackups() ([]*model.AutoBackupRecord, error)
	DeleteAutoBackups(ids []int64) error

	// Lifecycle. Path is the database file location; SnapshotTo writes a
	// consistent copy of the database to destPath; Reconcile applies the
	// additive, versionless schema migration and is safe to re-run.
	Path() string
	SnapshotTo(destPath string) error
	Reconcile() error
	Close() error
}
