package repo_test

import (
	"database/sql"
	"os"
	"testing"

	"github.com/kylelee-dev/postbrief/internal/config"
	"github.com/kylelee-dev/postbrief/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "postbrief",
		Password: "postbrief_pass",
		DBName:   "postbrief_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	for _, table := range []string{"posts", "batch_logs"} {
		if _, err := conn.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
