package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/term"

	"faenadoc/internal/config"
	"faenadoc/internal/database"
	"faenadoc/internal/encryption"
	"faenadoc/internal/faena"
	"faenadoc/internal/vault"
)

// App is the application layer between the CLI and the faena.Service.
// It constructs all dependencies from config, owns the per-invocation
// operation log, and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	service *faena.Service
	logFile *os.File
}

// New creates a fully wired App from the given config. operation identifies
// the CLI command being run (e.g. "SiteAdd", "ExportSite"). The caller must
// call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	store, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption, PromptPassphrase)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := uuid.NewString()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Info("operation started", "op", operation)

	policy := faena.BackupPolicy{
		Enabled:  cfg.Backup.AutoEnabled,
		KeepLast: cfg.Backup.KeepLast,
	}
	openStore := func(path string) (faena.Store, error) {
		return database.Open(path)
	}

	svc := faena.NewService(store, v, cfg.UploadRoot, enc, policy, openStore,
		&slogAdapter{l: logger}, faena.RealClock{})

	return &App{
		cfg:     cfg,
		service: svc,
		logFile: logFile,
	}, nil
}

// Service returns the wired domain service.
func (a *App) Service() *faena.Service {
	return a.service
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// StoreUpload copies the file at srcPath into the upload root under the
// given slash-separated relative directory, keeping the original base name.
// It returns the absolute destination path, which is what document records
// carry.
func (a *App) StoreUpload(srcPath, relDir string) (string, error) {
	destDir := filepath.Join(a.cfg.UploadRoot, filepath.FromSlash(relDir))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	destPath := filepath.Join(destDir, filepath.Base(srcPath))

	in, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("copying upload: %w", err)
	}
	return destPath, nil
}

// Snapshot takes an automatic database backup tagged with the command that
// mutated state. Failures are reported but should not abort the command
// whose mutation already succeeded.
func (a *App) Snapshot(tag string) error {
	_, err := a.service.AutoSnapshot(tag)
	return err
}

// Close releases the store and the log file.
func (a *App) Close() error {
	err := a.service.Store().Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// PromptPassphrase reads a passphrase from the terminal without echo. When
// stdin is not a terminal (tests, pipes) it falls back to reading a line.
func PromptPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pass, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(pass), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return line, nil
}
