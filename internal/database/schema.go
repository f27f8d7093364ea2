package database

import (
	"database/sql"
	"fmt"
)

// The schema is reconciled, not versioned: restore accepts database payloads
// produced by foreign or older releases that carry no migration bookkeeping,
// so the only workable strategy is additive — create any missing table, add
// any missing column, never drop or rename. Reconcile is safe to re-run and
// runs on every open and unconditionally after every restore.

var createTables = []string{
	`CREATE TABLE IF NOT EXISTS mandantes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre TEXT NOT NULL UNIQUE
	);`,
	`CREATE TABLE IF NOT EXISTS contratos_faena (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mandante_id INTEGER NOT NULL,
		nombre TEXT NOT NULL,
		fecha_inicio TEXT,
		fecha_termino TEXT,
		file_path TEXT,
		sha256 TEXT,
		created_at TEXT,
		FOREIGN KEY(mandante_id) REFERENCES mandantes(id) ON DELETE RESTRICT
	);`,
	`CREATE TABLE IF NOT EXISTS faenas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mandante_id INTEGER NOT NULL,
		contrato_faena_id INTEGER,
		nombre TEXT NOT NULL,
		ubicacion TEXT DEFAULT '',
		fecha_inicio TEXT NOT NULL,
		fecha_termino TEXT,
		estado TEXT NOT NULL CHECK(estado IN ('ACTIVA','TERMINADA')),
		FOREIGN KEY(mandante_id) REFERENCES mandantes(id) ON DELETE RESTRICT,
		FOREIGN KEY(contrato_faena_id) REFERENCES contratos_faena(id) ON DELETE SET NULL
	);`,
	`CREATE TABLE IF NOT EXISTS faena_anexos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		faena_id INTEGER NOT NULL,
		nombre TEXT NOT NULL,
		file_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(faena_id) REFERENCES faenas(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS trabajadores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rut TEXT NOT NULL UNIQUE,
		nombres TEXT NOT NULL,
		apellidos TEXT NOT NULL,
		cargo TEXT DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS asignaciones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		faena_id INTEGER NOT NULL,
		trabajador_id INTEGER NOT NULL,
		cargo_faena TEXT DEFAULT '',
		fecha_ingreso TEXT NOT NULL,
		fecha_egreso TEXT,
		estado TEXT NOT NULL DEFAULT 'ACTIVA' CHECK(estado IN ('ACTIVA','CERRADA')),
		UNIQUE(faena_id, trabajador_id),
		FOREIGN KEY(faena_id) REFERENCES faenas(id) ON DELETE CASCADE,
		FOREIGN KEY(trabajador_id) REFERENCES trabajadores(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS trabajador_documentos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trabajador_id INTEGER NOT NULL,
		doc_tipo TEXT NOT NULL,
		nombre_archivo TEXT NOT NULL,
		file_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(trabajador_id) REFERENCES trabajadores(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS empresa_documentos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_tipo TEXT NOT NULL,
		nombre_archivo TEXT NOT NULL,
		file_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS faena_empresa_documentos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		faena_id INTEGER NOT NULL,
		doc_tipo TEXT NOT NULL,
		nombre_archivo TEXT NOT NULL,
		file_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(faena_id) REFERENCES faenas(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS export_historial (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		faena_id INTEGER NOT NULL,
		file_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(faena_id) REFERENCES faenas(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS export_historial_mes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year_month TEXT NOT NULL,
		file_path TEXT NOT NULL,
		sha256 TEXT,
		size_bytes INTEGER,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS auto_backup_historial (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tag TEXT,
		file_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);`,
}

// Columns added after the first release. Databases created before these
// existed gain them on reconcile.
var addColumns = map[string]map[string]string{
	"trabajadores": {
		"centro_costo":    "TEXT",
		"email":           "TEXT",
		"fecha_contrato":  "TEXT",
		"vigencia_examen": "TEXT",
	},
}

// Reconcile brings the schema up to date without touching existing data.
func Reconcile(db *sql.DB) error {
	for _, stmt := range createTables {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for table, cols := range addColumns {
		if err := addColumnsIfMissing(db, table, cols); err != nil {
			return err
		}
	}
	return nil
}

func addColumnsIfMissing(db *sql.DB, table string, cols map[string]string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspecting table %s: %w", table, err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scanning table info for %s: %w", table, err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("reading table info for %s: %w", table, err)
	}
	rows.Close()

	for col, typ := range cols {
		if existing[col] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col, typ)); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, col, err)
		}
	}
	return nil
}
