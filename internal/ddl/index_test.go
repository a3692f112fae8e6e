// internal/ddl/index_test.go
package ddl

import (
	"strings"
	"testing"
)

func TestBuildCreateIndexSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		table       string
		idx         IndexDef
		wantSQL     string
		wantErr     bool
		errContains string
	}{
		{
			name:        "empty table returns error",
			table:       "",
			idx:         IndexDef{Name: "idx_t_a", Columns: []string{"a"}},
			wantErr:     true,
			errContains: "table FQN must not be empty",
		},
		{
			name:        "empty index name returns error",
			table:       "t",
			idx:         IndexDef{Columns: []string{"a"}},
			wantErr:     true,
			errContains: "index name must not be empty",
		},
		{
			name:        "no columns returns error",
			table:       "t",
			idx:         IndexDef{Name: "idx_t_a"},
			wantErr:     true,
			errContains: "at least one column",
		},
		{
			name:        "blank column returns error",
			table:       "t",
			idx:         IndexDef{Name: "idx_t_a", Columns: []string{"a", " "}},
			wantErr:     true,
			errContains: "column with empty name",
		},
		{
			name:    "single column",
			table:   "t",
			idx:     IndexDef{Name: "idx_t_a", Columns: []string{"a"}},
			wantSQL: "CREATE INDEX idx_t_a ON t (a);",
		},
		{
			name:    "unique index",
			table:   "t",
			idx:     IndexDef{Name: "idx_t_a", Columns: []string{"a"}, Unique: true},
			wantSQL: "CREATE UNIQUE INDEX idx_t_a ON t (a);",
		},
		{
			name:    "composite index",
			table:   "public.t",
			idx:     IndexDef{Name: "idx_t_abc", Columns: []string{"a", "b", "c"}},
			wantSQL: "CREATE INDEX idx_t_abc ON public.t (a, b, c);",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateIndexSQL(tc.table, tc.idx)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("error %q does not contain %q", err, tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("got %q, want %q", got, tc.wantSQL)
			}
		})
	}
}
