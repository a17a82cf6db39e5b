// README: Helpers for DB-backed tests: locate the repo root and apply migrations.
package testutil

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations lists every schema file in apply order.
var Migrations = []string{
	"0001_init.sql",
	"0002_fare_rates.sql",
}

// OpenTestDB connects to SAFETAXI_TEST_DSN, applies migrations and truncates
// the given tables. It skips the test when the variable is not set.
func OpenTestDB(t *testing.T, truncate ...string) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("SAFETAXI_TEST_DSN")
	if dsn == "" {
		t.Skip("SAFETAXI_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(truncate) > 0 {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+strings.Join(truncate, ", ")); err != nil {
			t.Fatalf("truncate %v: %v", truncate, err)
		}
	}
	return db
}

func ApplyMigrations(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	for _, name := range Migrations {
		content, err := os.ReadFile(filepath.Join(root, "migrations", name))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQL(stripSQLComments(string(content))) {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
