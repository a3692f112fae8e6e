// Package config defines the canonical, JSON-serializable configuration model
// for a court-decision import run. It is intentionally small and explicit so
// that runs can be described in a file under configs/ (or assembled from CLI
// flags) and passed through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":     "courtimport",
//	  "source":  { "data_dir": "data", "delimiter": "tab", "encoding": "utf-8" },
//	  "storage": { "kind": "postgres", "dsn": "postgres://...", "table_prefix": "court_decisions" },
//	  "runtime": { "strategy": "parallel", "workers": 8, "batch_size": 50000, "chunk_size": 200000 }
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Run describes one import invocation. Year selection is a CLI concern; the
// same Run value is reused for every year of a multi-year sweep.
type Run struct {
	// Job names the run for metrics labeling and log prefixes.
	Job string `json:"job"`

	// Source describes where the delimited extract comes from and how it is
	// encoded.
	Source Source `json:"source"`

	// Storage describes the target store.
	Storage Storage `json:"storage"`

	// Runtime controls concurrency, batching, and strategy selection.
	Runtime Runtime `json:"runtime"`
}

// Source holds input-file options. Delimiter and encoding are fixed per run.
type Source struct {
	// DataDir is the directory holding the yearly extracts
	// (documents_<YY>.csv). Ignored when Path is set.
	DataDir string `json:"data_dir"`

	// Path points at an explicit source file, overriding the year-derived
	// name. Useful for one-off loads and tests.
	Path string `json:"path"`

	// Delimiter is "tab" (default) or "comma".
	Delimiter string `json:"delimiter"`

	// Encoding is "utf-8" (default) or "windows-1251". Yearly extracts from
	// the court registry before 2011 ship in windows-1251.
	Encoding string `json:"encoding"`
}

// Storage selects the sink used to persist imported rows.
type Storage struct {
	// Kind selects the storage backend ("postgres", "mysql", "mssql",
	// "sqlite"). Backends register themselves with the storage factory.
	Kind string `json:"kind"`

	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// TablePrefix is the per-year table name prefix; the target table is
	// "<prefix>_<year>".
	TablePrefix string `json:"table_prefix"`
}

// Runtime controls the concurrency shape of a run. Zero values fall back to
// environment variables and then to built-in defaults (12-factor style).
type Runtime struct {
	// Strategy is "parallel" (chunked queue + worker pool) or "direct"
	// (single pass through a staging file, one bulk-load call).
	Strategy string `json:"strategy"`

	// Workers is the number of concurrent transform-and-load workers.
	Workers int `json:"workers"`

	// BatchSize is the number of rows per bulk-load call.
	BatchSize int `json:"batch_size"`

	// ChunkSize is the number of source rows per queue chunk.
	ChunkSize int `json:"chunk_size"`

	// QueueDepth is the work-queue capacity in chunks; 0 means 2×Workers.
	QueueDepth int `json:"queue_depth"`

	// ProgressSeconds is the progress-report interval; 0 means 10.
	ProgressSeconds int `json:"progress_seconds"`
}

// Defaults mirror the tuning the import was profiled with: large chunks keep
// reader I/O calls rare, batches of 50k rows amortize per-COPY overhead.
const (
	DefaultWorkers         = 8
	DefaultBatchSize       = 50_000
	DefaultChunkSize       = 200_000
	DefaultProgressSeconds = 10
	DefaultTablePrefix     = "court_decisions"

	StrategyParallel = "parallel"
	StrategyDirect   = "direct"
)

// WithDefaults resolves zero/empty fields against environment overrides and
// built-in defaults and returns the completed Run.
func (r Run) WithDefaults() Run {
	if r.Job == "" {
		r.Job = "courtimport"
	}
	if r.Source.Delimiter == "" {
		r.Source.Delimiter = "tab"
	}
	if r.Source.Encoding == "" {
		r.Source.Encoding = "utf-8"
	}
	if r.Storage.TablePrefix == "" {
		r.Storage.TablePrefix = DefaultTablePrefix
	}
	if r.Runtime.Strategy == "" {
		r.Runtime.Strategy = StrategyParallel
	}
	r.Runtime.Workers = pickInt(r.Runtime.Workers, getenvInt("COURTIMPORT_WORKERS", DefaultWorkers))
	r.Runtime.BatchSize = pickInt(r.Runtime.BatchSize, getenvInt("COURTIMPORT_BATCH_SIZE", DefaultBatchSize))
	r.Runtime.ChunkSize = pickInt(r.Runtime.ChunkSize, getenvInt("COURTIMPORT_CHUNK_SIZE", DefaultChunkSize))
	r.Runtime.QueueDepth = pickInt(r.Runtime.QueueDepth, 2*r.Runtime.Workers)
	r.Runtime.ProgressSeconds = pickInt(r.Runtime.ProgressSeconds, DefaultProgressSeconds)
	return r
}

// TableName derives the per-year target table name.
func (s Storage) TableName(year int) string {
	return fmt.Sprintf("%s_%d", s.TablePrefix, year)
}

// SourceFileName derives the yearly extract file name. The registry publishes
// files keyed by two-digit year (documents_24.csv for 2024).
func SourceFileName(year int) string {
	short := year % 100
	return fmt.Sprintf("documents_%02d.csv", short)
}

// DelimiterRune maps the configured delimiter name onto the rune used by the
// reader. Unknown names fall back to tab.
func (s Source) DelimiterRune() rune {
	switch s.Delimiter {
	case "comma":
		return ','
	default:
		return '\t'
	}
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
