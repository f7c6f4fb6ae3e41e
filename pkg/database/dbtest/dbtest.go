// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/ghuser/invoiceledger/pkg/database"
	"github.com/ghuser/invoiceledger/pkg/logger"
)

// MemoryURL is a private in-memory SQLite database with foreign keys enforced.
const MemoryURL = "sqlite://file::memory:?_foreign_keys=on"

// Open returns a fresh in-memory database that is closed when t finishes.
func Open(t testing.TB) *database.Database {
	t.Helper()
	db, err := database.Open(context.Background(), MemoryURL, logger.Discard())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
