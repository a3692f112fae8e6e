package mssql

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

func TestEnsureTableGuardedCreate(t *testing.T) {
	repo := &spyRepo{}
	def := transformer.TableDef("court_decisions_2024")

	if err := (lifecycle{}).EnsureTable(context.Background(), repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if !repo.executed("IF OBJECT_ID(N'court_decisions_2024', 'U') IS NULL CREATE TABLE [court_decisions_2024]") {
		t.Errorf("missing guarded create, got:\n%s", strings.Join(repo.execs, "\n"))
	}
	if repo.executed("CREATE INDEX") {
		t.Error("indexes must not be built at ensure time")
	}
}

func TestFinalizeBuildsIndexesAndStatistics(t *testing.T) {
	repo := &spyRepo{}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)
	if !rep.OK() {
		t.Fatalf("report not OK: %+v", rep)
	}
	for _, want := range []string{
		"CREATE UNIQUE INDEX [idx_court_decisions_2024_doc_id]",
		"CREATE INDEX [idx_court_decisions_2024_case_search]",
		"UPDATE STATISTICS [court_decisions_2024]",
	} {
		if !repo.executed(want) {
			t.Errorf("missing %q, got:\n%s", want, strings.Join(repo.execs, "\n"))
		}
	}
	// SQL Server has no durability mode to restore.
	if rep.DurabilityErr != nil {
		t.Errorf("unexpected DurabilityErr: %v", rep.DurabilityErr)
	}
}

func TestFinalizeIndexFailureIsBestEffort(t *testing.T) {
	repo := &spyRepo{failOn: []string{"idx_court_decisions_2024_doc_id"}}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)
	if len(rep.IndexErrs) != 1 {
		t.Fatalf("IndexErrs = %+v", rep.IndexErrs)
	}
	if !repo.executed("idx_court_decisions_2024_cause_num") {
		t.Error("later indexes skipped after one failure")
	}
}

func TestMapType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"serial", "INT IDENTITY(1,1)"},
		{"timestamp", "DATETIME2"},
		{"text", "NVARCHAR(MAX)"},
		{"varchar(50)", "NVARCHAR(50)"},
		{"", "NVARCHAR(MAX)"},
	}
	for _, tc := range cases {
		if got := MapType(tc.in); got != tc.want {
			t.Errorf("MapType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMSIdentQuoting(t *testing.T) {
	if got := msIdent("odd]name"); got != "[odd]]name]" {
		t.Errorf("msIdent = %q", got)
	}
	if got := msFQN("dbo.t"); got != "[dbo].[t]" {
		t.Errorf("msFQN = %q", got)
	}
}
