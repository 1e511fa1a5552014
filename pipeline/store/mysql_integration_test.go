package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// MySQL integration test against a real database.
//
// Prerequisites:
//   - MySQL server running (local, Docker, or cloud)
//   - TEST_MYSQL_DSN environment variable set with connection string
//   - Database user has CREATE, INSERT, SELECT, UPDATE, DELETE permissions
//
// Example:
//
//	export TEST_MYSQL_DSN="user:password@tcp(localhost:3306)/contentpipe_test"
//	go test -v -run TestMySQLIntegration ./pipeline/store

func TestMySQLIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL integration test: Set TEST_MYSQL_DSN environment variable to run")
	}

	s, err := NewMySQLStore(dsn)
	if err != nil {
		t.Fatalf("NewMySQLStore failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	// Unique run ID per test execution so runs against a shared
	// database don't collide.
	runID := fmt.Sprintf("run-mysql-%d", time.Now().UnixNano())
	runStoreSuite(t, s, runID)
}
