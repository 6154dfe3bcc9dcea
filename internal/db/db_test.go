package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestSchemaConstraints(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO users (student_id, username, email, password_hash, full_name)
		VALUES ('S1', 'jdoe', 'j@x.edu', 'hash', 'J Doe')`)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}

	_, err = database.Exec(`INSERT INTO users (student_id, username, email, password_hash, full_name)
		VALUES ('S2', 'jdoe', 'other@x.edu', 'hash', 'Other')`)
	if err == nil {
		t.Error("expected duplicate username to be rejected")
	}

	_, err = database.Exec(`INSERT INTO items (user_id, title, category, location, date_lost_found, item_type)
		VALUES (1, 'Wallet', 'Accessories', 'Library', '2024-12-01', 'stolen')`)
	if err == nil {
		t.Error("expected unknown item type to be rejected")
	}

	_, err = database.Exec(`INSERT INTO items (user_id, title, category, location, date_lost_found, item_type)
		VALUES (42, 'Wallet', 'Accessories', 'Library', '2024-12-01', 'lost')`)
	if err == nil {
		t.Error("expected unknown owner to be rejected")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	var mode string
	if err := database.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenFileForeignKeysOnEveryConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()
	database.SetMaxIdleConns(4)

	// Hold several connections at once so the pool has to open new ones.
	var conns []*sql.Conn
	for range 3 {
		conn, err := database.Conn(context.Background())
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		conns = append(conns, conn)
	}
	for i, conn := range conns {
		var on int
		if err := conn.QueryRowContext(context.Background(), `PRAGMA foreign_keys`).Scan(&on); err != nil {
			t.Fatalf("reading foreign_keys: %v", err)
		}
		if on != 1 {
			t.Errorf("connection %d: foreign_keys = %d, want 1", i, on)
		}
		conn.Close()
	}
}

func TestFoldLowersUnicode(t *testing.T) {
	database := NewTestDB(t)

	var folded string
	if err := database.QueryRow(`SELECT fold('ČRNA Denarnica ŽŠ')`).Scan(&folded); err != nil {
		t.Fatalf("fold: %v", err)
	}
	if folded != "črna denarnica žš" {
		t.Errorf("fold = %q, want %q", folded, "črna denarnica žš")
	}

	var null sql.NullString
	if err := database.QueryRow(`SELECT fold(NULL)`).Scan(&null); err != nil {
		t.Fatalf("fold(NULL): %v", err)
	}
	if null.Valid {
		t.Errorf("fold(NULL) = %q, want NULL", null.String)
	}
}
