// Package psqltest opens throwaway sqlite databases with the production schema.
package psqltest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"helpdesk/helpdesk/sources/psql"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

// NewDatabase returns a migrated in-memory database private to t.
func NewDatabase(t testing.TB) *psql.Database {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := psql.Open(context.Background(), sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serialised
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(db.Close)
	return db
}
