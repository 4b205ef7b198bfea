package testsupport

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-menu-cache/store"
)

// NewDB opens a private in-memory SQLite database with foreign keys enabled.
// The database is closed when the test ends.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := store.Open(store.Config{
		Driver:       store.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// NewStore returns a Store over a fresh database with the schema in place.
func NewStore(t *testing.T) *store.Store {
	t.Helper()

	s := store.New(NewDB(t))
	if err := s.CreateSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return s
}
