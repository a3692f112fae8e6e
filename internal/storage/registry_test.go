package storage

import (
	"context"
	"io"
	"testing"

	"github.com/LegalAILegal/analiz-klientiv-sub001/internal/ddl"
)

type stubRepo struct{}

func (stubRepo) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (stubRepo) LoadFile(context.Context, []string, io.Reader) (int64, error) {
	return 0, nil
}
func (stubRepo) Exec(context.Context, string) error { return nil }
func (stubRepo) Close()                             {}

type stubLifecycle struct{}

func (stubLifecycle) EnsureTable(context.Context, Repository, ddl.TableDef) error { return nil }
func (stubLifecycle) Finalize(context.Context, Repository, ddl.TableDef) FinalizeReport {
	return FinalizeReport{}
}
func (stubLifecycle) TableExists(context.Context, Repository, string) (bool, error) {
	return false, nil
}

func TestFactoryRegistry(t *testing.T) {
	var gotCfg Config
	Register("registry-test", func(_ context.Context, cfg Config) (Repository, error) {
		gotCfg = cfg
		return stubRepo{}, nil
	})

	cfg := Config{Kind: "registry-test", DSN: "dsn", Table: "t", Columns: []string{"a"}}
	repo, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo == nil {
		t.Fatal("New returned nil repository")
	}
	if gotCfg.DSN != "dsn" || gotCfg.Table != "t" {
		t.Errorf("factory received %+v", gotCfg)
	}

	if _, err := New(context.Background(), Config{Kind: "no-such-kind"}); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}

func TestLifecycleRegistry(t *testing.T) {
	RegisterLifecycle("registry-test", stubLifecycle{})

	if _, err := LifecycleFor("registry-test"); err != nil {
		t.Fatalf("LifecycleFor: %v", err)
	}
	if _, err := LifecycleFor("no-such-kind"); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}

func TestFinalizeReportOK(t *testing.T) {
	if !(FinalizeReport{}).OK() {
		t.Error("empty report should be OK")
	}
	if (FinalizeReport{IndexErrs: []IndexBuildError{{Index: "i"}}}).OK() {
		t.Error("index failure should not be OK")
	}
	if (FinalizeReport{DurabilityErr: &DurabilityRestoreError{Table: "t"}}).OK() {
		t.Error("durability failure should not be OK")
	}
	if (FinalizeReport{StatsErr: io.EOF}).OK() {
		t.Error("stats failure should not be OK")
	}
}
