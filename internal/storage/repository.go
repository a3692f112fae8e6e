// Package storage contains storage-agnostic contracts and utilities for the
// import pipeline: the Repository interface, a backend factory keyed by kind,
// the table lifecycle registry, and the staging wire-format codec.
//
// Concrete backends (postgres, mysql, mssql, sqlite) live in subpackages and
// register themselves at init time; importing storage/all (even blank) makes
// every built-in backend available to the factory.
package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Config carries everything a backend needs to open a repository against one
// target table.
type Config struct {
	Kind    string   // backend selector, e.g. "postgres"
	DSN     string   // backend connection string
	Table   string   // target table name, possibly schema-qualified
	Columns []string // ordered columns for bulk load
}

// Repository is the narrow bulk-load and DDL surface of the target store.
// Implementations must be safe for concurrent use: multiple workers issue
// CopyFrom calls in parallel during the load phase.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns order) into the
	// configured table using the backend's fastest native path, in one store
	// operation. It returns the number of rows accepted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// LoadFile streams a staging artifact written in the codec wire format
	// (see StagingWriter) into the configured table in one bulk-load call.
	LoadFile(ctx context.Context, columns []string, r io.Reader) (int64, error)

	// Exec executes a SQL statement (typically DDL) against the store.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connections.
	Close()
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	facMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a backend factory for the given storage
// kind. It is typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	facMu.Lock()
	defer facMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	facMu.RLock()
	fn, ok := factories[cfg.Kind]
	facMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for kind=%q", cfg.Kind)
	}
	return fn(ctx, cfg)
}
