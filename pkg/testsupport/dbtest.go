package testsupport

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	cms "github.com/allanasp/haspen-cms-sub001"
)

// NewSQLiteMemoryDB opens a shared in-memory SQLite database for tests.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// NewBunSQLiteDB wraps an in-memory SQLite database in a bun.DB so repository
// tests can run against a real dialect without external infrastructure.
func NewBunSQLiteDB() (*bun.DB, error) {
	sqldb, err := NewSQLiteMemoryDB()
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewTestDB opens a private in-memory SQLite database, wraps it in bun, and
// applies the embedded schema migrations. The pool is pinned to a single
// connection; a second connection would see a different empty database.
func NewTestDB(ctx context.Context) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := MigrateUp(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MigrateUp applies every embedded *.up.sql migration in name order.
func MigrateUp(ctx context.Context, db *bun.DB) error {
	fsys := cms.GetMigrationsFS()
	names, err := fs.Glob(fsys, "data/sql/migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(raw)); err != nil {
			return err
		}
	}
	return nil
}
