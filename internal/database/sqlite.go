package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"faenadoc/internal/faena"
	"faenadoc/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the faena.Store interface over a single SQLite
// database file. Optional text columns are normalized to "" on read and
// stored as NULL when empty, so databases written by older releases scan
// cleanly.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at path and reconciles
// the schema. path can be ":memory:" for tests.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite ships with foreign keys OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.Reconcile(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Clients and contracts

func (s *SQLiteStore) CreateClient(name string) (*model.Client, error) {
	res, err := s.db.Exec("INSERT INTO mandantes(nombre) VALUES(?)", name)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return &model.Client{ID: id, Name: name}, nil
}

func (s *SQLiteStore) ListClients() ([]*model.Client, error) {
	rows, err := s.db.Query("SELECT id, nombre FROM mandantes ORDER BY nombre")
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var out []*model.Client
	for rows.Next() {
		c := &model.Client{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateContract(c *model.SiteContract) (*model.SiteContract, error) {
	res, err := s.db.Exec(
		`INSERT INTO contratos_faena(mandante_id, nombre, fecha_inicio, fecha_termino, file_path, sha256, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		c.ClientID, c.Name, nullIfEmpty(c.StartDate), nullIfEmpty(c.EndDate),
		nullIfEmpty(c.Path), nullIfEmpty(c.SHA256), nullIfEmpty(c.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating contract: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating contract: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) AttachContractFile(contractID int64, path, sha256, createdAt string) error {
	_, err := s.db.Exec(
		"UPDATE contratos_faena SET file_path=?, sha256=?, created_at=? WHERE id=?",
		path, sha256, createdAt, contractID,
	)
	if err != nil {
		return fmt.Errorf("attaching contract file: %w", err)
	}
	return nil
}

// DeleteContract removes the contract row; dependent sites keep existing
// with their reference nulled (ON DELETE SET NULL), never cascading.
func (s *SQLiteStore) DeleteContract(contractID int64) error {
	if _, err := s.db.Exec("DELETE FROM contratos_faena WHERE id=?", contractID); err != nil {
		return fmt.Errorf("deleting contract: %w", err)
	}
	return nil
}

// Sites

func (s *SQLiteStore) CreateSite(site *model.Site) (*model.Site, error) {
	res, err := s.db.Exec(
		`INSERT INTO faenas(mandante_id, contrato_faena_id, nombre, ubicacion, fecha_inicio, fecha_termino, estado)
		 VALUES(?,?,?,?,?,?,?)`,
		site.ClientID, nullIfZero(site.ContractID), site.Name, site.Location,
		site.StartDate, nullIfEmpty(site.EndDate), site.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}
	site.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}
	return site, nil
}

const siteDetailQuery = `
	SELECT f.id, f.mandante_id, COALESCE(f.contrato_faena_id, 0), f.nombre,
	       COALESCE(f.ubicacion, ''), f.fecha_inicio, COALESCE(f.fecha_termino, ''), f.estado,
	       m.nombre, COALESCE(cf.nombre, ''), COALESCE(cf.file_path, '')
	FROM faenas f
	JOIN mandantes m ON m.id = f.mandante_id
	LEFT JOIN contratos_faena cf ON cf.id = f.contrato_faena_id`

func (s *SQLiteStore) GetSiteDetail(siteID int64) (*faena.SiteDetail, error) {
	row := s.db.QueryRow(siteDetailQuery+" WHERE f.id = ?", siteID)
	d, err := scanSiteDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading site detail: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) ListSites() ([]*model.Site, error) {
	rows, err := s.db.Query(
		`SELECT id, mandante_id, COALESCE(contrato_faena_id, 0), nombre,
		        COALESCE(ubicacion, ''), fecha_inicio, COALESCE(fecha_termino, ''), estado
		 FROM faenas ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer rows.Close()

	var out []*model.Site
	for rows.Next() {
		site := &model.Site{}
		if err := rows.Scan(&site.ID, &site.ClientID, &site.ContractID, &site.Name,
			&site.Location, &site.StartDate, &site.EndDate, &site.Status); err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		out = append(out, site)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSiteDetailsByMonth(yearMonth string) ([]*faena.SiteDetail, error) {
	rows, err := s.db.Query(siteDetailQuery+" WHERE substr(f.fecha_inicio, 1, 7) = ? ORDER BY f.id DESC", yearMonth)
	if err != nil {
		return nil, fmt.Errorf("listing sites by month: %w", err)
	}
	defer rows.Close()

	var out []*faena.SiteDetail
	for rows.Next() {
		d, err := scanSiteDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning site detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CloseSite(siteID int64, endDate string) error {
	_, err := s.db.Exec("UPDATE faenas SET estado=?, fecha_termino=? WHERE id=?",
		model.SiteFinished, endDate, siteID)
	if err != nil {
		return fmt.Errorf("closing site: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSiteDetail(r rowScanner) (*faena.SiteDetail, error) {
	d := &faena.SiteDetail{}
	err := r.Scan(&d.ID, &d.ClientID, &d.ContractID, &d.Name, &d.Location,
		&d.StartDate, &d.EndDate, &d.Status, &d.ClientName, &d.ContractName, &d.ContractPath)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Annexes

func (s *SQLiteStore) AddAnnex(a *model.Annex) (*model.Annex, error) {
	res, err := s.db.Exec(
		"INSERT INTO faena_anexos(faena_id, nombre, file_path, sha256, created_at) VALUES(?,?,?,?,?)",
		a.SiteID, a.Name, a.Path, a.SHA256, a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding annex: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("adding annex: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAnnexes(siteID int64) ([]*model.Annex, error) {
	rows, err := s.db.Query(
		"SELECT id, faena_id, nombre, file_path, sha256, created_at FROM faena_anexos WHERE faena_id=? ORDER BY id",
		siteID)
	if err != nil {
		return nil, fmt.Errorf("listing annexes: %w", err)
	}
	defer rows.Close()

	var out []*model.Annex
	for rows.Next() {
		a := &model.Annex{}
		if err := rows.Scan(&a.ID, &a.SiteID, &a.Name, &a.Path, &a.SHA256, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning annex: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Workers and assignments

const workerColumns = `id, rut, nombres, apellidos, COALESCE(cargo, ''),
	COALESCE(centro_costo, ''), COALESCE(email, ''), COALESCE(fecha_contrato, ''), COALESCE(vigencia_examen, '')`

func (s *SQLiteStore) CreateWorker(w *model.Worker) (*model.Worker, error) {
	res, err := s.db.Exec(
		`INSERT INTO trabajadores(rut, nombres, apellidos, cargo, centro_costo, email, fecha_contrato, vigencia_examen)
		 VALUES(?,?,?,?,?,?,?,?)`,
		w.RUT, w.GivenNames, w.FamilyNames, w.JobTitle,
		nullIfEmpty(w.CostCenter), nullIfEmpty(w.Email), nullIfEmpty(w.HireDate), nullIfEmpty(w.MedicalExamDue),
	)
	if err != nil {
		return nil, fmt.Errorf("creating worker: %w", err)
	}
	w.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating worker: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) FindWorkerByRUT(rut string) (*model.Worker, error) {
	row := s.db.QueryRow("SELECT "+workerColumns+" FROM trabajadores WHERE rut=?", rut)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding worker by rut: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) ListWorkers() ([]*model.Worker, error) {
	return s.queryWorkers("SELECT " + workerColumns + " FROM trabajadores ORDER BY apellidos, nombres")
}

func (s *SQLiteStore) ListAssignedWorkers(siteID int64) ([]*model.Worker, error) {
	q := `SELECT t.id, t.rut, t.nombres, t.apellidos, COALESCE(t.cargo, ''),
	             COALESCE(t.centro_costo, ''), COALESCE(t.email, ''),
	             COALESCE(t.fecha_contrato, ''), COALESCE(t.vigencia_examen, '')
	      FROM asignaciones a
	      JOIN trabajadores t ON t.id = a.trabajador_id
	      WHERE a.faena_id = ?
	      ORDER BY t.apellidos, t.nombres`
	return s.queryWorkers(q, siteID)
}

func (s *SQLiteStore) queryWorkers(query string, args ...any) ([]*model.Worker, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	var out []*model.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning worker: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWorker(r rowScanner) (*model.Worker, error) {
	w := &model.Worker{}
	err := r.Scan(&w.ID, &w.RUT, &w.GivenNames, &w.FamilyNames, &w.JobTitle,
		&w.CostCenter, &w.Email, &w.HireDate, &w.MedicalExamDue)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *SQLiteStore) CreateAssignment(a *model.Assignment) (*model.Assignment, error) {
	if a.Status == "" {
		a.Status = model.AssignmentActive
	}
	res, err := s.db.Exec(
		`INSERT INTO asignaciones(faena_id, trabajador_id, cargo_faena, fecha_ingreso, fecha_egreso, estado)
		 VALUES(?,?,?,?,?,?)`,
		a.SiteID, a.WorkerID, a.JobTitle, a.EntryDate, nullIfEmpty(a.ExitDate), a.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}
	return a, nil
}

// Documents

func (s *SQLiteStore) AddWorkerDocument(d *model.WorkerDocument) (*model.WorkerDocument, error) {
	res, err := s.db.Exec(
		`INSERT INTO trabajador_documentos(trabajador_id, doc_tipo, nombre_archivo, file_path, sha256, created_at)
		 VALUES(?,?,?,?,?,?)`,
		d.WorkerID, d.DocType, d.FileName, d.Path, d.SHA256, d.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding worker document: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("adding worker document: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) ListWorkerDocuments(workerID int64) ([]*model.WorkerDocument, error) {
	rows, err := s.db.Query(
		`SELECT id, trabajador_id, doc_tipo, nombre_archivo, file_path, sha256, created_at
		 FROM trabajador_documentos WHERE trabajador_id=? ORDER BY id`, workerID)
	if err != nil {
		return nil, fmt.Errorf("listing worker documents: %w", err)
	}
	defer rows.Close()

	var out []*model.WorkerDocument
	for rows.Next() {
		d := &model.WorkerDocument{}
		if err := rows.Scan(&d.ID, &d.WorkerID, &d.DocType, &d.FileName, &d.Path, &d.SHA256, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning worker document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddCompanyDocument(d *model.CompanyDocument) (*model.CompanyDocument, error) {
	var (
		res sql.Result
		err error
	)
	if d.SiteID == 0 {
		res, err = s.db.Exec(
			`INSERT INTO empresa_documentos(doc_tipo, nombre_archivo, file_path, sha256, created_at)
			 VALUES(?,?,?,?,?)`,
			d.DocType, d.FileName, d.Path, d.SHA256, d.CreatedAt,
		)
	} else {
		res, err = s.db.Exec(
			`INSERT INTO faena_empresa_documentos(faena_id, doc_tipo, nombre_archivo, file_path, sha256, created_at)
			 VALUES(?,?,?,?,?,?)`,
			d.SiteID, d.DocType, d.FileName, d.Path, d.SHA256, d.CreatedAt,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("adding company document: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("adding company document: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) ListCompanyDocuments(siteID int64) ([]*model.CompanyDocument, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if siteID == 0 {
		rows, err = s.db.Query(
			"SELECT id, 0, doc_tipo, nombre_archivo, file_path, sha256, created_at FROM empresa_documentos ORDER BY id")
	} else {
		rows, err = s.db.Query(
			`SELECT id, faena_id, doc_tipo, nombre_archivo, file_path, sha256, created_at
			 FROM faena_empresa_documentos WHERE faena_id=? ORDER BY id`, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing company documents: %w", err)
	}
	defer rows.Close()

	var out []*model.CompanyDocument
	for rows.Next() {
		d := &model.CompanyDocument{}
		if err := rows.Scan(&d.ID, &d.SiteID, &d.DocType, &d.FileName, &d.Path, &d.SHA256, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning company document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Export and backup history

func (s *SQLiteStore) AppendExport(r *model.ExportRecord) (*model.ExportRecord, error) {
	res, err := s.db.Exec(
		"INSERT INTO export_historial(faena_id, file_path, sha256, size_bytes, created_at) VALUES(?,?,?,?,?)",
		r.SiteID, r.Path, r.SHA256, r.SizeBytes, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("appending export record: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("appending export record: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListExports(siteID int64) ([]*model.ExportRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, faena_id, '', file_path, sha256, size_bytes, created_at
		 FROM export_historial WHERE faena_id=? ORDER BY id DESC`, siteID)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return collectExports(rows)
}

func (s *SQLiteStore) AppendMonthlyExport(r *model.ExportRecord) (*model.ExportRecord, error) {
	res, err := s.db.Exec(
		"INSERT INTO export_historial_mes(year_month, file_path, sha256, size_bytes, created_at) VALUES(?,?,?,?,?)",
		r.YearMonth, r.Path, r.SHA256, r.SizeBytes, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("appending monthly export record: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("appending monthly export record: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListMonthlyExports() ([]*model.ExportRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, 0, year_month, file_path, COALESCE(sha256, ''), COALESCE(size_bytes, 0), created_at
		 FROM export_historial_mes ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing monthly exports: %w", err)
	}
	return collectExports(rows)
}

func collectExports(rows *sql.Rows) ([]*model.ExportRecord, error) {
	defer rows.Close()
	var out []*model.ExportRecord
	for rows.Next() {
		r := &model.ExportRecord{}
		if err := rows.Scan(&r.ID, &r.SiteID, &r.YearMonth, &r.Path, &r.SHA256, &r.SizeBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning export record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendAutoBackup(r *model.AutoBackupRecord) (*model.AutoBackupRecord, error) {
	res, err := s.db.Exec(
		"INSERT INTO auto_backup_historial(tag, file_path, sha256, size_bytes, created_at) VALUES(?,?,?,?,?)",
		r.Tag, r.Path, r.SHA256, r.SizeBytes, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("appending auto backup record: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("appending auto backup record: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListAutoBackups() ([]*model.AutoBackupRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(tag, ''), file_path, sha256, size_bytes, created_at
		 FROM auto_backup_historial ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing auto backups: %w", err)
	}
	defer rows.Close()

	var out []*model.AutoBackupRecord
	for rows.Next() {
		r := &model.AutoBackupRecord{}
		if err := rows.Scan(&r.ID, &r.Tag, &r.Path, &r.SHA256, &r.SizeBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning auto backup record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteAutoBackups(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.db.Exec("DELETE FROM auto_backup_historial WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("deleting auto backup records: %w", err)
	}
	return nil
}

// Lifecycle

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string { return s.path }

// SnapshotTo writes a consistent copy of the database to destPath using
// VACUUM INTO. destPath must not exist.
func (s *SQLiteStore) SnapshotTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("snapshotting database: %w", err)
	}
	return nil
}

// Reconcile applies the additive schema migration.
func (s *SQLiteStore) Reconcile() error {
	return Reconcile(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullIfZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

// Compile-time check that SQLiteStore implements faena.Store
var _ faena.Store = (*SQLiteStore)(nil)
