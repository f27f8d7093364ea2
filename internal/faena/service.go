package faena

// BackupPolicy controls the automatic snapshot behavior.
type BackupPolicy struct {
	// Enabled gates AutoSnapshot; when false the call is a silent no-op.
	Enabled bool
	// KeepLast is the retention limit for auto-backup records.
	KeepLast int
}

// DefaultKeepLast is the retention limit applied when the policy leaves
// KeepLast unset.
const DefaultKeepLast = 20

// OpenStoreFunc reopens the store after a restore has replaced the database
// file on disk. Implementations must run the schema reconcile before
// returning.
type OpenStoreFunc func(path string) (Store, error)

// Service is the orchestration layer that coordinates the store, the upload
// tree and the vault to answer compliance queries, build archives and manage
// snapshots.
type Service struct {
	store      Store
	vault      Vault
	uploadRoot string
	encryptor  Encryptor // nil when backups are stored in plaintext
	policy     BackupPolicy
	openStore  OpenStoreFunc
	logger     Logger
	clock      Clock
}

// NewService creates a Service with the provided dependencies. openStore may
// be nil if Restore is never used (e.g. read-only tooling).
func NewService(store Store, vault Vault, uploadRoot string, encryptor Encryptor, policy BackupPolicy, openStore OpenStoreFunc, logger Logger, clock Clock) *Service {
	if policy.KeepLast <= 0 {
		policy.KeepLast = DefaultKeepLast
	}
	return &Service{
		store:      store,
		vault:      vault,
		uploadRoot: uploadRoot,
		encryptor:  encryptor,
		policy:     policy,
		openStore:  openStore,
		logger:     logger,
		clock:      clock,
	}
}

// Store exposes the live store to collaborators (CLI handlers feed records
// through it). After a successful Restore this returns the reopened store.
func (s *Service) Store() Store { return s.store }

// UploadRoot is the directory holding uploaded binaries.
func (s *Service) UploadRoot() string { return s.uploadRoot }
