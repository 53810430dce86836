// SPDX-License-Identifier: MIT

package estimate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// Archive persists sweep results in SQLite so runs can be compared over
// time.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (and if needed creates) the archive database.
func OpenArchive(dbPath string) (*Archive, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS estimates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		file TEXT NOT NULL,
		class TEXT NOT NULL,
		encoding TEXT NOT NULL CHECK(encoding IN ('simple', 'pattern')),
		qubits INTEGER NOT NULL,
		total_gates INTEGER NOT NULL,
		mcx_gates INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_estimates_file ON estimates(file);
	CREATE INDEX IF NOT EXISTS idx_estimates_class_encoding ON estimates(class, encoding);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Save writes every non-classical file of the report, two rows per file.
func (a *Archive) Save(ctx context.Context, report *Report) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO estimates (created_at, file, class, encoding, qubits, total_gates, mcx_gates)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, f := range report.Files {
		if f.Classical {
			continue
		}
		if _, err := tx.ExecContext(ctx, query, now, f.File, string(f.Class), "simple",
			f.Simple.Qubits, f.Simple.TotalGates, f.Simple.MCXGates); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, now, f.File, string(f.Class), "pattern",
			f.Pattern.Qubits, f.Pattern.TotalGates, f.Pattern.MCXGates); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Row is one archived estimate.
type Row struct {
	CreatedAt  time.Time `json:"createdAt"`
	File       string    `json:"file"`
	Class      Class     `json:"class"`
	Encoding   string    `json:"encoding"`
	Qubits     int       `json:"qubits"`
	TotalGates int       `json:"totalGates"`
	MCXGates   int       `json:"mcxGates"`
}

// Recent returns the newest rows, most recent first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT created_at, file, class, encoding, qubits, total_gates, mcx_gates
	FROM estimates
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var r Row
		var created, class string
		if err := rows.Scan(&created, &r.File, &class, &r.Encoding, &r.Qubits, &r.TotalGates, &r.MCXGates); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		r.Class = Class(class)
		out = append(out, r)
	}
	return out, rows.Err()
}
