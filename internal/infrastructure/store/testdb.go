package store

import (
	"database/sql"
	"testing"
)

// NewTestDB opens an in-memory database with the schema applied. The
// connection is closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return db
}
