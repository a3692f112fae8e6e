package storage

import "fmt"

// BulkLoadError reports a rejected bulk-load call. A whole batch fails
// together; the pipeline counts its rows as dropped and keeps going, so the
// error carries the row count for accounting.
type BulkLoadError struct {
	Table string
	Rows  int
	Err   error
}

func (e *BulkLoadError) Error() string {
	return fmt.Sprintf("bulk load into %s rejected (%d rows): %v", e.Table, e.Rows, e.Err)
}

func (e *BulkLoadError) Unwrap() error { return e.Err }

// IndexBuildError reports a failed index build during finalize. Remaining
// indexes are still attempted; the table stays usable.
type IndexBuildError struct {
	Index string
	Err   error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("build index %s: %v", e.Index, e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// DurabilityRestoreError reports that the table could not be moved back to
// its durable mode after load. The data is loaded but remains at risk until
// the transition is retried, so callers must surface this prominently.
type DurabilityRestoreError struct {
	Table string
	Err   error
}

func (e *DurabilityRestoreError) Error() string {
	return fmt.Sprintf("restore durability on %s: %v (table remains crash-unsafe)", e.Table, e.Err)
}

func (e *DurabilityRestoreError) Unwrap() error { return e.Err }
