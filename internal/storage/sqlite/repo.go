// Package sqlite implements the SQLite storage backend on modernc.org/sqlite
// (pure Go, no cgo). SQLite has no server-side bulk protocol; batches run as
// prepared inserts inside a single transaction, which is the fast path for
// this engine.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// init registers the "sqlite" backend and its table lifecycle with the
// storage factory.
func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
	})
	storage.RegisterLifecycle("sqlite", lifecycle{})
}

// Config holds SQLite repository configuration.
type Config struct {
	DSN     string // file path or file: URI
	Table   string
	Columns []string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the database file. A single writer connection avoids
// SQLITE_BUSY contention between workers.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// CopyFrom inserts the batch inside one transaction with a prepared statement.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		liteIdent(r.cfg.Table),
		strings.Join(mapIdent(columns), ", "),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}

	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("close stmt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int64(len(rows)), nil
}

// LoadFile replays a staging artifact through the transactional insert path.
func (r *Repository) LoadFile(ctx context.Context, columns []string, src io.Reader) (int64, error) {
	const flushEvery = 50_000

	var (
		total int64
		batch = make([][]any, 0, flushEvery)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.CopyFrom(ctx, columns, batch)
		total += n
		batch = batch[:0]
		return err
	}

	err := storage.ReadStaged(src, len(columns), func(vals []any) error {
		batch = append(batch, vals)
		if len(batch) >= flushEvery {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// Exec executes a SQL statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// Close closes the database.
func (r *Repository) Close() { _ = r.db.Close() }

// liteIdent quotes an identifier with double quotes.
func liteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = liteIdent(c)
	}
	return out
}
