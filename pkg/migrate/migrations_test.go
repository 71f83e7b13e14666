package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/bookstore-backend/pkg/config"
	"github.com/angelmondragon/bookstore-backend/pkg/db"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", suffix)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestCartMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_carts")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS carts",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_open_user ON carts (user_id) WHERE is_ordered = false",
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_cart_book ON cart_items (cart_id, book_id)",
		"FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE",
		"FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS cart_items",
	}
	for _, sub := range checks {
		assert.True(t, strings.Contains(content, sub), "missing expected statement %q", sub)
	}
}

func TestBookMigrationContainsStockCheck(t *testing.T) {
	content := readMigration(t, "create_books")
	assert.Contains(t, content, "CONSTRAINT chk_books_quantity CHECK (quantity >= 0)")
	assert.Contains(t, content, "CONSTRAINT chk_books_price CHECK (price >= 0)")
}

func TestOrderMigrationKeepsSnapshotColumns(t *testing.T) {
	content := readMigration(t, "create_orders")
	for _, col := range []string{"book_name TEXT NOT NULL", "book_author TEXT NOT NULL", "unit_price BIGINT NOT NULL"} {
		assert.Contains(t, content, col)
	}
	assert.Contains(t, content, "CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_cart_id")
}

func TestValidateDirAcceptsBundledMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestCreateSQLMigrationProducesValidFile(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Book ISBN")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_book_isbn.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
	require.Error(t, migrate.ValidateDir(t.TempDir()))
}

func TestBootstrapAutoMigratesSQLite(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvProd},
		DB:  config.DBConfig{Driver: config.DriverSQLite, DSN: "file:bootstrap_test?mode=memory&cache=shared"},
	}
	client, err := db.New(context.Background(), cfg.DB, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, migrate.Bootstrap(context.Background(), cfg, logger.Nop(), client))
	for _, table := range []string{"users", "books", "carts", "cart_items", "orders", "order_lines", "outbox_events", "outbox_dlq"} {
		assert.True(t, client.DB().Migrator().HasTable(table), "missing table %s", table)
	}
}
