package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateIndexSQL renders a generic CREATE INDEX statement for one index
// on the given table. It emits identifiers verbatim and leaves
// dialect-specific clauses (IF NOT EXISTS, USING btree, CONCURRENTLY) to
// backend wrappers.
func BuildCreateIndexSQL(tableFQN string, idx IndexDef) (string, error) {
	fqn := strings.TrimSpace(tableFQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	name := strings.TrimSpace(idx.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: index name must not be empty")
	}
	if len(idx.Columns) == 0 {
		return "", fmt.Errorf("ddl: index %s requires at least one column", name)
	}
	for _, c := range idx.Columns {
		if strings.TrimSpace(c) == "" {
			return "", fmt.Errorf("ddl: index %s has a column with empty name", name)
		}
	}

	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}

	return fmt.Sprintf(
		"CREATE %sINDEX %s ON %s (%s);",
		unique,
		name,
		fqn,
		strings.Join(idx.Columns, ", "),
	), nil
}
