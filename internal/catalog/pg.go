package catalog

import (
	"database/sql"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type pgBackend struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func openPG(dsn string) (*pgBackend, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &pgBackend{db: db}, nil
}

func (p *pgBackend) Close() error { return p.db.Close() }

func (p *pgBackend) ensureSchema() error {
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.Exec(`
CREATE TABLE IF NOT EXISTS catalog_entries (
    name TEXT PRIMARY KEY,
    repository TEXT NOT NULL,
    manifest TEXT NOT NULL,
    passed BOOLEAN NOT NULL DEFAULT FALSE,
    iterations INT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
	})
	return p.schemaErr
}

func (p *pgBackend) put(e Entry) error {
	if err := p.ensureSchema(); err != nil {
		return err
	}
	_, err := p.db.Exec(`
INSERT INTO catalog_entries (name, repository, manifest, passed, iterations, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name)
DO UPDATE SET repository=EXCLUDED.repository, manifest=EXCLUDED.manifest,
              passed=EXCLUDED.passed, iterations=EXCLUDED.iterations, updated_at=EXCLUDED.updated_at
`, e.Name, e.Repository, e.Manifest, e.Passed, e.Iterations, e.UpdatedAt)
	return err
}

func (p *pgBackend) get(name string) (Entry, bool, error) {
	if err := p.ensureSchema(); err != nil {
		return Entry{}, false, err
	}
	var e Entry
	err := p.db.QueryRow(`
SELECT name, repository, manifest, passed, iterations, updated_at
FROM catalog_entries WHERE name=$1`, name).
		Scan(&e.Name, &e.Repository, &e.Manifest, &e.Passed, &e.Iterations, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (p *pgBackend) list() ([]Entry, error) {
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := p.db.Query(`
SELECT name, repository, manifest, passed, iterations, updated_at
FROM catalog_entries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Repository, &e.Manifest, &e.Passed, &e.Iterations, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
