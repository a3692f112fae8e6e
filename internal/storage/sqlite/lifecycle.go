package sqlite

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// lifecycle implements storage.Lifecycle for SQLite.
//
// The load phase turns off fsync and keeps the journal in memory; finalize
// restores full durability, builds indexes, and refreshes statistics. A crash
// mid-load can corrupt the database file, which matches the deal the other
// backends make during bulk load.
type lifecycle struct{}

// EnsureTable creates the target table and relaxes durability pragmas.
func (lifecycle) EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	sql, err := createTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", def.FQN, err)
	}
	for _, p := range []string{"PRAGMA synchronous = OFF;", "PRAGMA journal_mode = MEMORY;"} {
		if err := repo.Exec(ctx, p); err != nil {
			log.Printf("lifecycle: %s: %v", strings.TrimSuffix(p, ";"), err)
		}
	}
	return nil
}

// Finalize builds indexes best-effort, restores durable pragmas, and runs
// ANALYZE.
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

	if err := repo.Exec(ctx, "PRAGMA synchronous = FULL;"); err != nil {
		rep.DurabilityErr = &storage.DurabilityRestoreError{Table: def.FQN, Err: err}
	}
	if err := repo.Exec(ctx, "PRAGMA journal_mode = DELETE;"); err != nil {
		log.Printf("lifecycle: journal_mode delete: %v", err)
	}

	if err := repo.Exec(ctx, "ANALYZE;"); err != nil {
		rep.StatsErr = fmt.Errorf("analyze: %w", err)
	}

	return rep
}

// TableExists checks sqlite_master. It needs a query-capable connection, so
// it only works on the concrete SQLite repository.
func (lifecycle) TableExists(ctx context.Context, repo storage.Repository, table string) (bool, error) {
	r, ok := repo.(*Repository)
	if !ok {
		return false, fmt.Errorf("sqlite lifecycle: unexpected repository type %T", repo)
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite_master(%s): %w", table, err)
	}
	return n > 0, nil
}

// tableDialect replaces the primary-key column with the rowid alias;
// AUTOINCREMENT keeps ids monotonic across deletes.
var tableDialect = ddl.TableDialect{
	QuoteIdent:   liteIdent,
	MapType:      MapType,
	PKColumnType: "INTEGER PRIMARY KEY AUTOINCREMENT",
}

// createTableSQL renders the create statement with SQLite types and quoting.
func createTableSQL(def ddl.TableDef) (string, error) {
	body, err := ddl.BuildColumnDefsSQL(def, tableDialect)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		liteIdent(def.FQN),
		body,
	), nil
}

// createIndexSQL renders one index build.
func createIndexSQL(table string, idx ddl.IndexDef) (string, error) {
	if _, err := ddl.BuildCreateIndexSQL(table, idx); err != nil {
		return "", err
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s);",
		unique,
		liteIdent(idx.Name),
		liteIdent(table),
		strings.Join(mapIdent(idx.Columns), ", "),
	), nil
}

// MapType maps generic column types onto SQLite storage classes.
func MapType(generic string) string {
	g := strings.ToLower(strings.TrimSpace(generic))
	switch {
	case g == "serial":
		return "INTEGER"
	case g == "timestamp":
		return "TEXT" // stored in the staging time layout
	case strings.HasPrefix(g, "varchar"), g == "text", g == "":
		return "TEXT"
	default:
		return strings.ToUpper(generic)
	}
}
