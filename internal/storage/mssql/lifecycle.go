package mssql

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
)

// lifecycle implements storage.Lifecycle for SQL Server.
//
// SQL Server has no per-table logging mode to toggle, so the load phase only
// defers index builds; finalize creates the index set and refreshes
// statistics. The durability slot in the report is never populated here.
type lifecycle struct{}

// EnsureTable creates the target table without secondary indexes. The
// existence guard makes re-runs append into the existing table.
func (lifecycle) EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	sql, err := createTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", def.FQN, err)
	}
	return nil
}

// Finalize builds indexes best-effort and refreshes optimizer statistics.
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

	if err := repo.Exec(ctx, fmt.Sprintf("UPDATE STATISTICS %s;", msFQN(def.FQN))); err != nil {
		rep.StatsErr = fmt.Errorf("update statistics %s: %w", def.FQN, err)
	}

	return rep
}

// TableExists checks the catalog via OBJECT_ID. It needs a query-capable
// connection, so it only works on the concrete MSSQL repository.
func (lifecycle) TableExists(ctx context.Context, repo storage.Repository, table string) (bool, error) {
	r, ok := repo.(*Repository)
	if !ok {
		return false, fmt.Errorf("mssql lifecycle: unexpected repository type %T", repo)
	}
	var id *int64
	err := r.db.QueryRowContext(ctx, "SELECT OBJECT_ID(@p1, 'U')", table).Scan(&id)
	if err != nil {
		return false, fmt.Errorf("object_id(%s): %w", table, err)
	}
	return id != nil, nil
}

var tableDialect = ddl.TableDialect{QuoteIdent: msIdent, MapType: MapType, InlinePK: true}

// createTableSQL renders the create statement with SQL Server types and
// quoting, guarded by an OBJECT_ID existence check.
func createTableSQL(def ddl.TableDef) (string, error) {
	body, err := ddl.BuildColumnDefsSQL(def, tableDialect)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', 'U') IS NULL CREATE TABLE %s (\n  %s\n);",
		strings.ReplaceAll(def.FQN, "'", "''"),
		msFQN(def.FQN),
		body,
	), nil
}

// createIndexSQL renders one index build, guarded so re-runs skip indexes
// that already exist.
func createIndexSQL(table string, idx ddl.IndexDef) (string, error) {
	if _, err := ddl.BuildCreateIndexSQL(table, idx); err != nil {
		return "", err
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s' AND object_id = OBJECT_ID(N'%s')) "+
			"CREATE %sINDEX %s ON %s (%s);",
		strings.ReplaceAll(idx.Name, "'", "''"),
		strings.ReplaceAll(table, "'", "''"),
		unique,
		msIdent(idx.Name),
		msFQN(table),
		strings.Join(mapIdent(idx.Columns), ", "),
	), nil
}

// MapType maps generic column types onto SQL Server types.
func MapType(generic string) string {
	g := strings.ToLower(strings.TrimSpace(generic))
	switch {
	case g == "serial":
		return "INT IDENTITY(1,1)"
	case g == "timestamp":
		return "DATETIME2"
	case g == "text", g == "":
		return "NVARCHAR(MAX)"
	case strings.HasPrefix(g, "varchar"):
		return "N" + strings.ToUpper(g)
	default:
		return strings.ToUpper(generic)
	}
}
