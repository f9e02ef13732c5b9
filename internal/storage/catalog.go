package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/befsim/internal/sim"
)

// Catalog indexes stored runs in SQLite for querying across many runs.
type Catalog struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

type CatalogEntry struct {
	ID          string
	Name        string
	Created     time.Time
	Seed        int64
	Species     int
	Status      sim.Status
	Persistence float64
	Rewirings   int
}

// Filter narrows Query. Zero values match everything.
type Filter struct {
	Status         sim.Status
	MinPersistence float64
	Limit          int
}

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		return errors.New("catalog path is required")
	}
	if c.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	c.db = db
	return nil
}

func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Index records or refreshes a run.
func (c *Catalog) Index(ctx context.Context, meta *RunMetadata) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, name, created, seed, species, status, persistence, rewirings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			persistence = excluded.persistence,
			rewirings = excluded.rewirings
	`, meta.ID, meta.Name, meta.Timestamp.UTC().Format(time.RFC3339Nano), meta.Seed, meta.Species,
		string(meta.Status), meta.Summary.Persistence, meta.Rewirings)
	return err
}

func (c *Catalog) Get(ctx context.Context, id string) (CatalogEntry, bool, error) {
	db, err := c.getDB()
	if err != nil {
		return CatalogEntry{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, name, created, seed, species, status, persistence, rewirings
		FROM runs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CatalogEntry{}, false, nil
		}
		return CatalogEntry{}, false, err
	}
	return entry, true, nil
}

func (c *Catalog) Query(ctx context.Context, f Filter) ([]CatalogEntry, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}

	q := `SELECT id, name, created, seed, species, status, persistence, rewirings
		FROM runs WHERE persistence >= ?`
	args := []any{f.MinPersistence}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY created`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (CatalogEntry, error) {
	var (
		e       CatalogEntry
		created string
		status  string
	)
	if err := s.Scan(&e.ID, &e.Name, &created, &e.Seed, &e.Species, &status, &e.Persistence, &e.Rewirings); err != nil {
		return CatalogEntry{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return CatalogEntry{}, err
	}
	e.Created = t
	e.Status = sim.Status(status)
	return e, nil
}

func (c *Catalog) getDB() (*sql.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return nil, errors.New("catalog is not initialized")
	}
	return c.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created TEXT NOT NULL,
			seed INTEGER NOT NULL,
			species INTEGER NOT NULL,
			status TEXT NOT NULL,
			persistence REAL NOT NULL,
			rewirings INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_status ON runs (status);
	`)
	return err
}
