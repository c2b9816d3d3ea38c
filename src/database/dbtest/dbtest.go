// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/database"

	"gorm.io/gorm"
)

var seq atomic.Int64

// MemoryURL returns a shared-cache in-memory SQLite URL unique to the test.
func MemoryURL(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
}

// Open returns an in-memory database with the schema in place.
// The handle is closed when the test ends.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DatabaseURL:  MemoryURL(t),
		GormLogLevel: 1,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.EnsureSchema(db); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	return db
}
