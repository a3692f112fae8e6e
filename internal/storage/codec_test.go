package storage

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestStagingRoundTrip(t *testing.T) {
	adj := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	rows := [][]any{
		{"doc-1", "plain", adj, nil},
		{"doc-2", "tab\there", &adj, "trailing"},
		{"doc-3", `quote "inside"`, nil, "line\nbreak"},
		{"doc-4", "", nil, nil}, // empty string and NULL both stage as ""
	}

	var buf bytes.Buffer
	sw := NewStagingWriter(&buf)
	for _, r := range rows {
		if err := sw.WriteRow(r); err != nil {
			t.Fatalf("WriteRow: %v", err)
		}
	}
	if err := sw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sw.Rows() != int64(len(rows)) {
		t.Fatalf("Rows() = %d, want %d", sw.Rows(), len(rows))
	}

	var got [][]any
	err := ReadStaged(&buf, 4, func(vals []any) error {
		cp := make([]any, len(vals))
		copy(cp, vals)
		got = append(got, cp)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadStaged: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("decoded %d rows, want %d", len(got), len(rows))
	}

	if tm, ok := got[0][2].(time.Time); !ok || !tm.Equal(adj) {
		t.Errorf("row 0 timestamp = %v (%T)", got[0][2], got[0][2])
	}
	if got[0][3] != nil {
		t.Errorf("row 0 NULL = %v, want nil", got[0][3])
	}
	if got[1][1] != "tab\there" {
		t.Errorf("embedded tab lost: %q", got[1][1])
	}
	if got[2][1] != `quote "inside"` {
		t.Errorf("embedded quote lost: %q", got[2][1])
	}
	if got[2][3] != "line\nbreak" {
		t.Errorf("embedded newline lost: %q", got[2][3])
	}
	// Empty string is indistinguishable from NULL on the wire; both decode
	// to nil. The transformer never emits empty strings for nullable fields.
	if got[3][1] != nil {
		t.Errorf("empty field = %v, want nil", got[3][1])
	}
}

func TestFormatValue(t *testing.T) {
	adj := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{adj, "2024-03-01 10:30:00"},
		{&adj, "2024-03-01 10:30:00"},
		{(*time.Time)(nil), ""},
		{42, "42"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReadStagedFieldCountMismatch(t *testing.T) {
	in := "a\tb\tc\n"
	err := ReadStaged(strings.NewReader(in), 4, func([]any) error { return nil })
	if err == nil {
		t.Fatal("expected error for short record")
	}
}

func TestReadStagedDecodesTimestampShapeOnly(t *testing.T) {
	in := "2024-03-01 10:30:00\tnot a timestamp xx\n"
	var vals []any
	err := ReadStaged(strings.NewReader(in), 2, func(v []any) error {
		vals = append([]any{}, v...)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadStaged: %v", err)
	}
	if _, ok := vals[0].(time.Time); !ok {
		t.Errorf("timestamp field decoded as %T", vals[0])
	}
	if _, ok := vals[1].(string); !ok {
		t.Errorf("text field decoded as %T", vals[1])
	}
}
