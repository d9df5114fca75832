package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")

	db, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, table := range []string{"credentials", "boot_counter", "device_events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	var idx string
	if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_device_events_occurred_at'`).Scan(&idx); err != nil {
		t.Fatalf("event time index missing: %v", err)
	}

	// Re-opening an existing file keeps the schema idempotent.
	db2, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB second open: %v", err)
	}
	_ = db2.Close()
}
