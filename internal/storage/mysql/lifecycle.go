package mysql

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// lifecycle implements storage.Lifecycle for MySQL.
//
// MySQL has no UNLOGGED table mode; the relaxed-durability phase instead
// drops the per-statement fsync and uniqueness bookkeeping for the loading
// session and finalize turns them back on.
type lifecycle struct{}

// Session knobs applied around the load phase. innodb_flush_log_at_trx_commit
// is global on most deployments and may be refused; failures are logged and
// ignored.
var (
	relaxStmts = []string{
		"SET SESSION unique_checks = 0;",
		"SET SESSION foreign_key_checks = 0;",
	}
	restoreStmts = []string{
		"SET SESSION unique_checks = 1;",
		"SET SESSION foreign_key_checks = 1;",
	}
)

// EnsureTable creates the target table without secondary indexes and relaxes
// session durability checks. CREATE ... IF NOT EXISTS makes re-runs append.
func (lifecycle) EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	sql, err := createTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", def.FQN, err)
	}
	for _, s := range relaxStmts {
		if err := repo.Exec(ctx, s); err != nil {
			log.Printf("lifecycle: %s: %v", strings.TrimSuffix(s, ";"), err)
		}
	}
	return nil
}

// Finalize builds indexes best-effort, restores the session checks, and
// refreshes optimizer statistics.
func (lifecycle) Finalize(ctx context.Context, repo storage.Repository, def ddl.TableDef) storage.FinalizeReport {
	var rep storage.FinalizeReport

	for _, idx := range def.Indexes {
		sql, err := createIndexSQL(def.FQN, idx)
		if err == nil {
			err = repo.Exec(ctx, sql)
		}
		if err != nil {
			// MySQL lacks CREATE INDEX IF NOT EXISTS; a duplicate-name error
			// on a re-run lands here and is reported like any other failure.
			log.Printf("lifecycle: index %s: %v", idx.Name, err)
			rep.IndexErrs = append(rep.IndexErrs, storage.IndexBuildError{Index: idx.Name, Err: err})
		}
	}

	var restoreErr error
	for _, s := range restoreStmts {
		if err := repo.Exec(ctx, s); err != nil && restoreErr == nil {
			restoreErr = err
		}
	}
	if restoreErr != nil {
		rep.DurabilityErr = &storage.DurabilityRestoreError{Table: def.FQN, Err: restoreErr}
	}

	if err := repo.Exec(ctx, fmt.Sprintf("ANALYZE TABLE %s;", myFQN(def.FQN))); err != nil {
		rep.StatsErr = fmt.Errorf("analyze %s: %w", def.FQN, err)
	}

	return rep
}

// TableExists checks information_schema. It needs a query-capable connection,
// so it only works on the concrete MySQL repository.
func (lifecycle) TableExists(ctx context.Context, repo storage.Repository, table string) (bool, error) {
	r, ok := repo.(*Repository)
	if !ok {
		return false, fmt.Errorf("mysql lifecycle: unexpected repository type %T", repo)
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
		table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("information_schema.tables(%s): %w", table, err)
	}
	return n > 0, nil
}

var tableDialect = ddl.TableDialect{QuoteIdent: myIdent, MapType: MapType, InlinePK: true}

// createTableSQL renders the create statement with MySQL types and quoting.
func createTableSQL(def ddl.TableDef) (string, error) {
	body, err := ddl.BuildColumnDefsSQL(def, tableDialect)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		myFQN(def.FQN),
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
		"CREATE %sINDEX %s ON %s (%s);",
		unique,
		myIdent(idx.Name),
		myFQN(table),
		strings.Join(mapIdent(idx.Columns), ", "),
	), nil
}

// MapType maps generic column types onto MySQL types.
func MapType(generic string) string {
	g := strings.ToLower(strings.TrimSpace(generic))
	switch g {
	case "serial":
		return "INT AUTO_INCREMENT"
	case "timestamp":
		return "DATETIME"
	case "text", "":
		return "TEXT"
	default:
		return strings.ToUpper(generic)
	}
}
