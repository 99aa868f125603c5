package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SplitStatements splits a schema file on semicolons, dropping blanks and
// line comments.
func SplitStatements(ddl string) []string {
	var out []string
	for _, part := range strings.Split(ddl, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

// ApplySchema executes every statement of ddl in order. Statements must be
// idempotent (IF NOT EXISTS).
func ApplySchema(ctx context.Context, db *sql.DB, ddl string) error {
	for _, stmt := range SplitStatements(ddl) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
