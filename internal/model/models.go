package model

// Dates are ISO "YYYY-MM-DD" strings and timestamps RFC 3339 UTC strings.
// The persistence layer stores them as TEXT so that databases produced by
// older releases (and foreign backup payloads) load without conversion.

// Site status values.
const (
	SiteActive   = "ACTIVA"
	SiteFinished = "TERMINADA"
)

// Assignment status values.
const (
	AssignmentActive = "ACTIVA"
	AssignmentClosed = "CERRADA"
)

// RequiredWorkerDocTypes is the ordered catalog of mandatory per-worker
// evidence. Coverage arithmetic is defined over this list only; free-form
// document types may exist but never affect it.
var RequiredWorkerDocTypes = []string{
	"REGISTRO_EPP",
	"ENTREGA_RIOHS",
	"IRL",
	"CONTRATO_TRABAJO",
	"ANEXO_CONTRATO",
	"LIQUIDACIONES",
	"FINIQUITO",
}

// RequiredCompanyDocTypes is the catalog of mandatory per-site company
// evidence.
var RequiredCompanyDocTypes = []string{
	"CERTIFICADO_CUMPLIMIENTO_LABORAL",
	"CERTIFICADO_ACCIDENTABILIDAD",
}

// SuggestedCompanyDocTypes is a superset of RequiredCompanyDocTypes offered
// as hints when uploading; it plays no part in compliance math.
var SuggestedCompanyDocTypes = []string{
	"CERTIFICADO_CUMPLIMIENTO_LABORAL",
	"CERTIFICADO_ACCIDENTABILIDAD",
	"OTROS",
}

// Client ("mandante") is the commercial owner of contracts and sites.
type Client struct {
	ID   int64
	Name string // unique
}

// SiteContract governs one or more sites for a client. The attached file is
// optional; Path and SHA256 are empty when no file has been loaded.
type SiteContract struct {
	ID        int64
	ClientID  int64
	Name      string
	StartDate string
	EndDate   string
	Path      string
	SHA256    string
	CreatedAt string
}

// Site ("faena") is a temporary work location under a client.
type Site struct {
	ID         int64
	ClientID   int64
	ContractID int64 // 0 when no contract is referenced
	Name       string
	Location   string
	StartDate  string // required
	EndDate    string
	Status     string // SiteActive or SiteFinished
}

// Annex is a pure attachment on a site, with no compliance semantics.
type Annex struct {
	ID        int64
	SiteID    int64
	Name      string
	Path      string
	SHA256    string
	CreatedAt string
}

// Worker persists across assignments; documents uploaded for a worker remain
// valid when the worker is reused on a new site.
type Worker struct {
	ID             int64
	RUT            string // unique natural identifier
	GivenNames     string
	FamilyNames    string
	JobTitle       string
	CostCenter     string
	Email          string
	HireDate       string
	MedicalExamDue string // tracked, never consulted by coverage math
}

// Assignment links a worker to a site for a bounded period. Unique per
// (site, worker) pair.
type Assignment struct {
	ID        int64
	SiteID    int64
	WorkerID  int64
	JobTitle  string // site-specific
	EntryDate string
	ExitDate  string
	Status    string // AssignmentActive or AssignmentClosed
}

// WorkerDocument is one uploaded evidence file. A worker may hold several
// documents of the same type (e.g. renewed yearly).
type WorkerDocument struct {
	ID        int64
	WorkerID  int64
	DocType   string // open string; required subset drives compliance
	FileName  string
	Path      string
	SHA256    string
	CreatedAt string
}

// CompanyDocument is company-level evidence. SiteID is 0 for global
// documents (apply to every site) and non-zero for per-site documents.
type CompanyDocument struct {
	ID        int64
	SiteID    int64
	DocType   string
	FileName  string
	Path      string
	SHA256    string
	CreatedAt string
}

// ExportRecord is one row of append-only export history. Either SiteID or
// YearMonth is set, depending on the export kind.
type ExportRecord struct {
	ID        int64
	SiteID    int64
	YearMonth string
	Path      string
	SHA256    string
	SizeBytes int64
	CreatedAt string
}

// AutoBackupRecord is one row of append-only auto-backup history, subject to
// retention pruning.
type AutoBackupRecord struct {
	ID        int64
	Tag       string
	Path      string
	SHA256    string
	SizeBytes int64
	CreatedAt string
}
