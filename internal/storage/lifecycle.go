package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"
)

// Lifecycle is a backend-specific state machine for one target table around
// the load phase:
//
//	Absent → Created(unindexed, relaxed durability) → Loaded → Indexed(durable)
//
// EnsureTable runs strictly before any worker starts; Finalize runs strictly
// after every worker has joined. Backends register their implementation for a
// given storage kind (e.g. "postgres") at init time.
type Lifecycle interface {
	// EnsureTable creates the table in its fast-load state: no secondary
	// indexes, write durability relaxed where the backend supports it. It is
	// idempotent; an existing table is left untouched so re-runs append.
	EnsureTable(ctx context.Context, repo Repository, def ddl.TableDef) error

	// Finalize builds the index set, restores durability, and refreshes
	// planner statistics. Each step is best-effort: a failed index does not
	// abort the others, and every failure is captured in the report.
	Finalize(ctx context.Context, repo Repository, def ddl.TableDef) FinalizeReport

	// TableExists reports whether the table already exists. Used by the
	// multi-year driver to honor skip-existing.
	TableExists(ctx context.Context, repo Repository, table string) (bool, error)
}

// FinalizeReport collects the per-step outcomes of Finalize.
type FinalizeReport struct {
	IndexErrs     []IndexBuildError
	DurabilityErr *DurabilityRestoreError
	StatsErr      error
}

// OK reports whether every finalize step succeeded.
func (r FinalizeReport) OK() bool {
	return len(r.IndexErrs) == 0 && r.DurabilityErr == nil && r.StatsErr == nil
}

var (
	lcMu  sync.RWMutex
	lcFns = map[string]Lifecycle{}
)

// RegisterLifecycle registers (or replaces) the Lifecycle for the given
// storage kind. It is typically called from backend packages' init()
// functions.
func RegisterLifecycle(kind string, lc Lifecycle) {
	lcMu.Lock()
	defer lcMu.Unlock()
	lcFns[kind] = lc
}

// LifecycleFor returns the Lifecycle registered for kind. Callers do not need
// to know which backend they are using; they pass the kind from their Config.
func LifecycleFor(kind string) (Lifecycle, error) {
	lcMu.RLock()
	lc, ok := lcFns[kind]
	lcMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no table lifecycle registered for storage.kind=%q", kind)
	}
	return lc, nil
}
