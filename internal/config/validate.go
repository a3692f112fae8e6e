// This file adds a lightweight linter/validator for Run values. It performs
// static checks over a decoded Run and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Run.
//
// Path is a dotted path into the config (e.g. "storage.kind"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateRun performs static validation of a Run. It does not mutate the
// run; callers decide whether warnings are fatal.
//
// Validate after WithDefaults so that defaulted fields are not reported.
func ValidateRun(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	issues = append(issues, validateSource(r.Source)...)
	issues = append(issues, validateStorage(r.Storage)...)
	issues = append(issues, validateRuntime(r.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if s.Path == "" && s.DataDir == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source",
			Message:  "either source.path or source.data_dir must be set",
		})
	}

	switch s.Delimiter {
	case "", "tab", "comma":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.delimiter",
			Message:  fmt.Sprintf("unknown delimiter %q; expected \"tab\" or \"comma\"", s.Delimiter),
		})
	}

	switch s.Encoding {
	case "", "utf-8", "windows-1251":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.encoding",
			Message:  fmt.Sprintf("unknown encoding %q; expected \"utf-8\" or \"windows-1251\"", s.Encoding),
		})
	}

	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	// Known backend kinds. Unknown kinds are warnings for forward
	// compatibility; the factory gives a hard error at open time.
	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}

	return issues
}

func validateRuntime(rt Runtime) []Issue {
	var issues []Issue

	switch rt.Strategy {
	case "", StrategyParallel, StrategyDirect:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.strategy",
			Message:  fmt.Sprintf("unknown strategy %q; expected %q or %q", rt.Strategy, StrategyParallel, StrategyDirect),
		})
	}

	if rt.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	if rt.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if rt.ChunkSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.chunk_size",
			Message:  "chunk_size must not be negative",
		})
	}
	if rt.BatchSize > 0 && rt.ChunkSize > 0 && rt.BatchSize > rt.ChunkSize {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  "batch_size exceeds chunk_size; every chunk flushes a single undersized batch",
		})
	}

	return issues
}
