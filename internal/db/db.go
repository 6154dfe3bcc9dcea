package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"

	"modernc.org/sqlite"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, fold)
}

// fold lower-cases text with Unicode rules. SQLite's own lower() and LIKE
// only handle ASCII. NULL stays NULL.
func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("fold: unsupported argument type %T", v)
	}
}

// pragmas are applied to every connection.
var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open opens a SQLite database connection and configures pragmas.
//
// File databases get the pragmas through the DSN so that every pooled
// connection carries them. In-memory databases are private to a single
// connection, so the pool is pinned to one connection and the pragmas are
// executed on it.
func Open(path string) (*sql.DB, error) {
	if isMemory(path) {
		return openMemory(path)
	}

	params := url.Values{}
	for _, p := range append([]string{"journal_mode(WAL)"}, pragmas...) {
		params.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite", path+sep+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func openMemory(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		stmt := "PRAGMA " + strings.Replace(strings.TrimSuffix(p, ")"), "(", "=", 1)
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", stmt, err)
		}
	}
	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
