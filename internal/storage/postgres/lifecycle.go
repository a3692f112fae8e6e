package postgres

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// lifecycle implements storage.Lifecycle for Postgres.
//
// The load-phase table is UNLOGGED (no WAL) with synchronous_commit off;
// finalize builds the index set, flips the table back to LOGGED, and runs
// ANALYZE. Index maintenance and WAL during bulk insert are the dominant
// costs of a naive import, so both are deferred to a single pass at the end.
type lifecycle struct{}

// EnsureTable creates the target table in its fast-load state. CREATE ... IF
// NOT EXISTS makes re-runs append into the existing table.
func (lifecycle) EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	sql, err := createTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", def.FQN, err)
	}

	// Session-level speed knob; failure is harmless (UNLOGGED carries the
	// real win) so it is logged and ignored.
	if err := repo.Exec(ctx, "SET synchronous_commit = off;"); err != nil {
		log.Printf("lifecycle: synchronous_commit off: %v", err)
	}
	return nil
}

// Finalize builds indexes best-effort, restores WAL logging, and refreshes
// planner statistics.
func (lifecycle) Finalize(ctx context.Context, repo storage.Repository, def ddl.TableDef) storage.FinalizeReport {
	var rep storage.FinalizeReport

	for _, idx := range def.Indexes {
		sql, err := createIndexSQL(def.FQN, idx)
		if err == nil {
			err = repo.Exec(ctx, sql)
		}
		if err != nil {
			log.Printf("lifecycle: index %s: %v", idx.Name, err)
			rep.IndexErrs = append(rep.IndexErrs, storage.IndexBuildError{Index: idx.Name, Err: err})
		}
	}

	if err := repo.Exec(ctx, fmt.Sprintf("ALTER TABLE %s SET LOGGED;", pgFQN(def.FQN))); err != nil {
		rep.DurabilityErr = &storage.DurabilityRestoreError{Table: def.FQN, Err: err}
	}
	if err := repo.Exec(ctx, "SET synchronous_commit = on;"); err != nil {
		log.Printf("lifecycle: synchronous_commit on: %v", err)
	}

	if err := repo.Exec(ctx, fmt.Sprintf("ANALYZE %s;", pgFQN(def.FQN))); err != nil {
		rep.StatsErr = fmt.Errorf("analyze %s: %w", def.FQN, err)
	}

	return rep
}

// TableExists checks the catalog via to_regclass. It needs a query-capable
// connection, so it only works on the concrete Postgres repository.
func (lifecycle) TableExists(ctx context.Context, repo storage.Repository, table string) (bool, error) {
	r, ok := repo.(*Repository)
	if !ok {
		return false, fmt.Errorf("postgres lifecycle: unexpected repository type %T", repo)
	}
	var reg *string
	if err := r.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", table).Scan(&reg); err != nil {
		return false, fmt.Errorf("to_regclass(%s): %w", table, err)
	}
	return reg != nil, nil
}

// tableDialect feeds the shared column renderer; Postgres collects the
// primary key into a trailing clause.
var tableDialect = ddl.TableDialect{QuoteIdent: pgIdent, MapType: MapType}

// createTableSQL renders the UNLOGGED create statement with Postgres types
// and quoting.
func createTableSQL(def ddl.TableDef) (string, error) {
	body, err := ddl.BuildColumnDefsSQL(def, tableDialect)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE UNLOGGED TABLE IF NOT EXISTS %s (\n  %s\n);",
		pgFQN(def.FQN),
		body,
	), nil
}

// createIndexSQL renders one index build. IF NOT EXISTS keeps re-runs
// idempotent at the DDL level; duplicate rows on an already-indexed table
// surface at COPY time instead.
func createIndexSQL(table string, idx ddl.IndexDef) (string, error) {
	if _, err := ddl.BuildCreateIndexSQL(table, idx); err != nil {
		return "", err
	}
	unique := ""
	using := " USING btree"
	if idx.Unique {
		unique = "UNIQUE "
		using = ""
	}
	return fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s%s (%s);",
		unique,
		pgIdent(idx.Name),
		pgFQN(table),
		using,
		strings.Join(mapIdent(idx.Columns), ", "),
	), nil
}

// MapType maps generic column types onto Postgres types.
func MapType(generic string) string {
	switch strings.ToLower(strings.TrimSpace(generic)) {
	case "serial":
		return "SERIAL"
	case "timestamp":
		return "TIMESTAMP"
	case "text", "":
		return "TEXT"
	default:
		// varchar(n) and friends pass through unchanged.
		return strings.ToUpper(generic)
	}
}
