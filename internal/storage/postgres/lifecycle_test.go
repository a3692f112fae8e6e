package postgres

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage"
	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/transformer"
)

// spyRepo records executed SQL and fails statements matching failOn.
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

func TestEnsureTableCreatesUnlogged(t *testing.T) {
	repo := &spyRepo{}
	def := transformer.TableDef("court_decisions_2024")

	if err := (lifecycle{}).EnsureTable(context.Background(), repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}

	if !repo.executed(`CREATE UNLOGGED TABLE IF NOT EXISTS "court_decisions_2024"`) {
		t.Errorf("missing unlogged create, got:\n%s", strings.Join(repo.execs, "\n"))
	}
	if !repo.executed("SET synchronous_commit = off") {
		t.Error("missing synchronous_commit off")
	}
	// No index may be created before the load phase.
	if repo.executed("CREATE INDEX") || repo.executed("CREATE UNIQUE INDEX") {
		t.Error("indexes must not be built at ensure time")
	}
}

func TestEnsureTableSurvivesCommitKnobFailure(t *testing.T) {
	repo := &spyRepo{failOn: []string{"synchronous_commit"}}
	def := transformer.TableDef("court_decisions_2024")

	if err := (lifecycle{}).EnsureTable(context.Background(), repo, def); err != nil {
		t.Fatalf("EnsureTable should ignore the session knob failure: %v", err)
	}
}

func TestFinalizeHappyPath(t *testing.T) {
	repo := &spyRepo{}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)
	if !rep.OK() {
		t.Fatalf("report not OK: %+v", rep)
	}

	for _, want := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS "idx_court_decisions_2024_doc_id"`,
		`CREATE INDEX IF NOT EXISTS "idx_court_decisions_2024_cause_num"`,
		`CREATE INDEX IF NOT EXISTS "idx_court_decisions_2024_case_search"`,
		`ALTER TABLE "court_decisions_2024" SET LOGGED;`,
		"SET synchronous_commit = on",
		`ANALYZE "court_decisions_2024";`,
	} {
		if !repo.executed(want) {
			t.Errorf("missing %q, got:\n%s", want, strings.Join(repo.execs, "\n"))
		}
	}
}

func TestFinalizeIndexFailureIsBestEffort(t *testing.T) {
	repo := &spyRepo{failOn: []string{"idx_court_decisions_2024_cause_num"}}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)

	if len(rep.IndexErrs) != 1 || rep.IndexErrs[0].Index != "idx_court_decisions_2024_cause_num" {
		t.Fatalf("IndexErrs = %+v", rep.IndexErrs)
	}
	// The remaining indexes and the durability restore must still run.
	if !repo.executed("idx_court_decisions_2024_case_search") {
		t.Error("later indexes skipped after one failure")
	}
	if !repo.executed("SET LOGGED") {
		t.Error("durability restore skipped after index failure")
	}
	if rep.DurabilityErr != nil || rep.StatsErr != nil {
		t.Errorf("unexpected extra errors: %+v", rep)
	}
}

func TestFinalizeReportsDurabilityFailure(t *testing.T) {
	repo := &spyRepo{failOn: []string{"SET LOGGED"}}
	def := transformer.TableDef("court_decisions_2024")

	rep := (lifecycle{}).Finalize(context.Background(), repo, def)
	if rep.DurabilityErr == nil {
		t.Fatal("expected DurabilityErr")
	}
	if rep.DurabilityErr.Table != "court_decisions_2024" {
		t.Errorf("DurabilityErr.Table = %q", rep.DurabilityErr.Table)
	}
	// ANALYZE still runs so the table is at least queryable efficiently.
	if !repo.executed("ANALYZE") {
		t.Error("analyze skipped after durability failure")
	}
}

func TestMapType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"serial", "SERIAL"},
		{"timestamp", "TIMESTAMP"},
		{"text", "TEXT"},
		{"", "TEXT"},
		{"varchar(50)", "VARCHAR(50)"},
	}
	for _, tc := range cases {
		if got := MapType(tc.in); got != tc.want {
			t.Errorf("MapType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPGIdentQuoting(t *testing.T) {
	if got := pgFQN("public.court_decisions_2024"); got != `"public"."court_decisions_2024"` {
		t.Errorf("pgFQN = %q", got)
	}
	if got := pgIdent(`odd"name`); got != `"odd""name"` {
		t.Errorf("pgIdent = %q", got)
	}
}

var _ storage.Repository = (*spyRepo)(nil)
