// Package mysql implements the MySQL storage backend. Bulk loads go through
// LOAD DATA LOCAL INFILE with a registered reader handler, which is the
// closest MySQL equivalent of Postgres COPY: one streaming statement per
// batch instead of per-row inserts.
package mysql

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// init registers the "mysql" backend and its table lifecycle with the
// storage factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
	})
	storage.RegisterLifecycle("mysql", lifecycle{})
}

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// readerSeq numbers reader-handler registrations so concurrent batch loads
// on the same process never collide.
var readerSeq atomic.Int64

// NewRepository opens a connection pool against cfg.DSN. The DSN is
// normalized to allow LOAD DATA LOCAL INFILE from registered readers.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	dsnCfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	dsnCfg.AllowAllFiles = true // required for Reader:: LOAD DATA sources
	if dsnCfg.Params == nil {
		dsnCfg.Params = map[string]string{}
	}

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// CopyFrom serializes the batch into the staging wire format and streams it
// through one LOAD DATA LOCAL INFILE statement.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var buf bytes.Buffer
	buf.Grow(len(rows) * 64)
	sw := storage.NewStagingWriter(&buf)
	for _, row := range rows {
		if err := sw.WriteRow(row); err != nil {
			return 0, fmt.Errorf("serialize batch: %w", err)
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("serialize batch: %w", err)
	}
	return r.LoadFile(ctx, columns, &buf)
}

// LoadFile streams a staging artifact through LOAD DATA LOCAL INFILE in one
// call.
func (r *Repository) LoadFile(ctx context.Context, columns []string, src io.Reader) (int64, error) {
	name := fmt.Sprintf("staging_%d_%d", time.Now().UnixNano(), readerSeq.Add(1))
	mysql.RegisterReaderHandler(name, func() io.Reader { return src })
	defer mysql.DeregisterReaderHandler(name)

	res, err := r.db.ExecContext(ctx, loadDataStmt(name, r.cfg.Table, columns))
	if err != nil {
		return 0, fmt.Errorf("load data: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// loadDataStmt renders the LOAD DATA LOCAL INFILE statement for a registered
// reader. Every field routes through a positional user variable and is
// NULLIF'd so the codec's empty-field NULL convention survives the trip.
func loadDataStmt(readerName, table string, columns []string) string {
	vars := make([]string, len(columns))
	sets := make([]string, len(columns))
	for i, c := range columns {
		vars[i] = fmt.Sprintf("@v%d", i)
		sets[i] = fmt.Sprintf("%s = NULLIF(@v%d, '')", myIdent(c), i)
	}
	return fmt.Sprintf(
		"LOAD DATA LOCAL INFILE 'Reader::%s' INTO TABLE %s "+
			"FIELDS TERMINATED BY '\\t' OPTIONALLY ENCLOSED BY '\"' ESCAPED BY '' "+
			"LINES TERMINATED BY '\\n' (%s) SET %s",
		readerName,
		myFQN(table),
		strings.Join(vars, ", "),
		strings.Join(sets, ", "),
	)
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// Close closes the underlying pool.
func (r *Repository) Close() { _ = r.db.Close() }

// myIdent quotes a MySQL identifier with backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// myFQN quotes a possibly schema-qualified name like "db.court_decisions_2024".
func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = myIdent(c)
	}
	return out
}
