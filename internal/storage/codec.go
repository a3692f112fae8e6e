package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// StagingTimeLayout is the timestamp rendering used inside staging artifacts.
// It matches what the store-side bulk readers (COPY, LOAD DATA) accept
// without a format clause.
const StagingTimeLayout = "2006-01-02 15:04:05"

// The staging wire format is tab-delimited CSV: one row per line, fields
// quoted only when they embed the delimiter, a quote, or a newline, and NULL
// encoded as the empty field. Postgres consumes it via
// COPY ... WITH (FORMAT csv, DELIMITER E'\t', NULL ''), MySQL via LOAD DATA
// with matching FIELDS/LINES clauses, and the remaining backends replay it
// through their regular insert path.

// StagingWriter serializes positional rows into the staging wire format.
type StagingWriter struct {
	cw     *csv.Writer
	fields []string // reused per row
	rows   int64
}

// NewStagingWriter wraps w. The caller owns w and must call Flush before
// using the written bytes.
func NewStagingWriter(w io.Writer) *StagingWriter {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &StagingWriter{cw: cw}
}

// WriteRow appends one row. Values follow the bulk-load conventions: nil
// becomes NULL, time.Time is rendered with StagingTimeLayout, everything
// else is rendered as text.
func (sw *StagingWriter) WriteRow(vals []any) error {
	if cap(sw.fields) < len(vals) {
		sw.fields = make([]string, len(vals))
	}
	sw.fields = sw.fields[:len(vals)]
	for i, v := range vals {
		sw.fields[i] = FormatValue(v)
	}
	if err := sw.cw.Write(sw.fields); err != nil {
		return err
	}
	sw.rows++
	return nil
}

// Flush drains buffered output to the underlying writer.
func (sw *StagingWriter) Flush() error {
	sw.cw.Flush()
	return sw.cw.Error()
}

// Rows returns the number of rows written so far.
func (sw *StagingWriter) Rows() int64 { return sw.rows }

// FormatValue renders one bulk-load value as staging text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(StagingTimeLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(StagingTimeLayout)
	default:
		return fmt.Sprint(t)
	}
}

// ReadStaged streams rows back out of a staging artifact, calling fn once per
// row with values aligned to the original column order: empty fields decode
// to nil, fields in StagingTimeLayout shape decode to time.Time, everything
// else stays a string.
//
// This is the replay path for backends without a native file-load primitive;
// the file-capable backends hand the artifact bytes to the store untouched.
func ReadStaged(r io.Reader, columns int, fn func(vals []any) error) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = columns
	cr.ReuseRecord = true

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read staging artifact: %w", err)
		}

		vals := make([]any, len(rec))
		for i, f := range rec {
			vals[i] = decodeField(f)
		}
		if err := fn(vals); err != nil {
			return err
		}
	}
}

func decodeField(f string) any {
	if f == "" {
		return nil
	}
	if len(f) == len(StagingTimeLayout) {
		if t, err := time.Parse(StagingTimeLayout, f); err == nil {
			return t
		}
	}
	return f
}
