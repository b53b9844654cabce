// ABOUTME: SQLite connection management for the alert ledger
// ABOUTME: Opens the database in WAL mode at an XDG path and applies the schema
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is where the ledger database lives unless configured otherwise.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "bannerbook", "ledger.db")
}

func OpenDatabase(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// One writer at a time keeps SQLite from returning "database is locked".
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
