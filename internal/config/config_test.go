package config

import "testing"

func TestWithDefaults(t *testing.T) {
	r := Run{}.WithDefaults()

	if r.Job != "courtimport" {
		t.Errorf("Job = %q", r.Job)
	}
	if r.Source.Delimiter != "tab" || r.Source.Encoding != "utf-8" {
		t.Errorf("source defaults = %+v", r.Source)
	}
	if r.Storage.TablePrefix != DefaultTablePrefix {
		t.Errorf("TablePrefix = %q", r.Storage.TablePrefix)
	}
	if r.Runtime.Strategy != StrategyParallel {
		t.Errorf("Strategy = %q", r.Runtime.Strategy)
	}
	if r.Runtime.Workers != DefaultWorkers || r.Runtime.BatchSize != DefaultBatchSize || r.Runtime.ChunkSize != DefaultChunkSize {
		t.Errorf("runtime defaults = %+v", r.Runtime)
	}
	if r.Runtime.QueueDepth != 2*DefaultWorkers {
		t.Errorf("QueueDepth = %d, want %d", r.Runtime.QueueDepth, 2*DefaultWorkers)
	}
	if r.Runtime.ProgressSeconds != DefaultProgressSeconds {
		t.Errorf("ProgressSeconds = %d", r.Runtime.ProgressSeconds)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	r := Run{Runtime: Runtime{Workers: 3, BatchSize: 100, ChunkSize: 400}}.WithDefaults()

	if r.Runtime.Workers != 3 || r.Runtime.BatchSize != 100 || r.Runtime.ChunkSize != 400 {
		t.Errorf("explicit runtime values overridden: %+v", r.Runtime)
	}
	if r.Runtime.QueueDepth != 6 {
		t.Errorf("QueueDepth = %d, want 6", r.Runtime.QueueDepth)
	}
}

func TestWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("COURTIMPORT_WORKERS", "12")
	t.Setenv("COURTIMPORT_BATCH_SIZE", "not-a-number")

	r := Run{}.WithDefaults()
	if r.Runtime.Workers != 12 {
		t.Errorf("Workers = %d, want 12 from env", r.Runtime.Workers)
	}
	if r.Runtime.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want default on invalid env", r.Runtime.BatchSize)
	}
}

func TestTableName(t *testing.T) {
	s := Storage{TablePrefix: "court_decisions"}
	if got := s.TableName(2024); got != "court_decisions_2024" {
		t.Errorf("TableName = %q", got)
	}
}

func TestSourceFileName(t *testing.T) {
	cases := []struct {
		year int
		want string
	}{
		{2024, "documents_24.csv"},
		{2009, "documents_09.csv"},
		{2000, "documents_00.csv"},
	}
	for _, tc := range cases {
		if got := SourceFileName(tc.year); got != tc.want {
			t.Errorf("SourceFileName(%d) = %q, want %q", tc.year, got, tc.want)
		}
	}
}

func TestDelimiterRune(t *testing.T) {
	if (Source{Delimiter: "comma"}).DelimiterRune() != ',' {
		t.Error("comma should map to ','")
	}
	if (Source{Delimiter: "tab"}).DelimiterRune() != '\t' {
		t.Error("tab should map to '\\t'")
	}
	if (Source{}).DelimiterRune() != '\t' {
		t.Error("empty should fall back to tab")
	}
}

func TestValidateRun(t *testing.T) {
	valid := Run{
		Job:     "courtimport",
		Source:  Source{DataDir: "data"},
		Storage: Storage{Kind: "postgres", DSN: "postgres://localhost/x"},
	}.WithDefaults()

	cases := []struct {
		name     string
		mutate   func(*Run)
		wantPath string
		severity IssueSeverity
	}{
		{"missing job", func(r *Run) { r.Job = "" }, "job", SeverityError},
		{"missing source", func(r *Run) { r.Source.DataDir = ""; r.Source.Path = "" }, "source", SeverityError},
		{"bad delimiter", func(r *Run) { r.Source.Delimiter = "pipe" }, "source.delimiter", SeverityError},
		{"bad encoding", func(r *Run) { r.Source.Encoding = "koi8-r" }, "source.encoding", SeverityError},
		{"missing kind", func(r *Run) { r.Storage.Kind = "" }, "storage.kind", SeverityError},
		{"unknown kind", func(r *Run) { r.Storage.Kind = "oracle" }, "storage.kind", SeverityWarning},
		{"missing dsn", func(r *Run) { r.Storage.DSN = "" }, "storage.dsn", SeverityError},
		{"bad strategy", func(r *Run) { r.Runtime.Strategy = "turbo" }, "runtime.strategy", SeverityError},
		{"negative workers", func(r *Run) { r.Runtime.Workers = -1 }, "runtime.workers", SeverityError},
		{"batch over chunk", func(r *Run) { r.Runtime.BatchSize = 500; r.Runtime.ChunkSize = 100 }, "runtime.batch_size", SeverityWarning},
	}

	if issues := ValidateRun(valid); len(issues) != 0 {
		t.Fatalf("valid run produced issues: %v", issues)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			issues := ValidateRun(r)
			for _, iss := range issues {
				if iss.Path == tc.wantPath && iss.Severity == tc.severity {
					return
				}
			}
			t.Fatalf("no %s issue at %q in %v", tc.severity, tc.wantPath, issues)
		})
	}
}
