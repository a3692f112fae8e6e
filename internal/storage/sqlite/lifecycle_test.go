package sqlite

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/transformer"
)

type spyRepo struct {
	execs  []string
	failOn []string
}

func (s *spyRepo) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (s *spyRepo) LoadFile(context.Context, []string, io.Reader) (int64, error) {
	return 0, nil
}
func (s *spyRepo) Exec(_ context.Context, sql string) error {
	s.execs = append(s.execs, sql)
	for _, f := range s.failOn {
		if strings.Contains(sql, f) {
			return fmt.Errorf("refused: %s", f)
		}
	}
	return nil
}
func (s *spyRepo) Close() {}

func (s *spyRepo) executed(substr string) bool {
	for _, e := range s.execs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestEnsureTableRelaxesPragmas(t *testing.T) {
	repo := &spyRepo{}
	def := transformer.TableDef("court_decisions_2024")

	if err := (lifecycle{}).EnsureTable(context.Background(), repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if !repo.executed(`CREATE TABLE IF NOT EXISTS "court_decisions_2024"`) {
		t.Errorf("missing create, got:\n%s", strings.Join(repo.execs, "\n"))
	}
	if !repo.executed("PRAGMA synchronous = OFF") || !repo.executed("PRAGMA journal_mode = MEMORY") {
		t.Error("load pragmas not applied")
	}
}

func TestFinalizeRestoresPragmas(t *testing.T) {
	repo := &spyRepo{}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)
	if !rep.OK() {
		t.Fatalf("report not OK: %+v", rep)
	}
	for _, want := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS "idx_court_decisions_2024_doc_id"`,
		"PRAGMA synchronous = FULL",
		"ANALYZE;",
	} {
		if !repo.executed(want) {
			t.Errorf("missing %q, got:\n%s", want, strings.Join(repo.execs, "\n"))
		}
	}
}

func TestFinalizeReportsPragmaRestoreFailure(t *testing.T) {
	repo := &spyRepo{failOn: []string{"synchronous = FULL"}}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)
	if rep.DurabilityErr == nil {
		t.Fatal("expected DurabilityErr")
	}
}

func TestCreateTableSQLRowidPrimaryKey(t *testing.T) {
	sql, err := createTableSQL(transformer.TableDef("t"))
	if err != nil {
		t.Fatalf("createTableSQL: %v", err)
	}
	if !strings.Contains(sql, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`) {
		t.Errorf("missing rowid primary key:\n%s", sql)
	}
	if !strings.Contains(sql, `"adjudication_date" TEXT`) {
		t.Errorf("timestamp not mapped to TEXT:\n%s", sql)
	}
}

func TestMapType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"serial", "INTEGER"},
		{"timestamp", "TEXT"},
		{"varchar(50)", "TEXT"},
		{"text", "TEXT"},
	}
	for _, tc := range cases {
		if got := MapType(tc.in); got != tc.want {
			t.Errorf("MapType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
