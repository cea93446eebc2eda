package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite provisions a migrated user/audit store in t.TempDir() and
// returns the write/read pool pair, closing both via t.Cleanup. Repository
// tests that never exercise the pool split can use writeDB for everything.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	storePath := filepath.Join(t.TempDir(), "pageguard.sqlite")

	writeDB, readDB, err := OpenSQLitePair(storePath, 2)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(writeDB); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}

	return writeDB, readDB
}
