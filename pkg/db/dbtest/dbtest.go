// Package dbtest opens throwaway SQLite databases with the full schema applied.
package dbtest

import (
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
)

// Open returns an isolated in-memory database. The pool is pinned to a single
// connection so concurrent transactions serialize the way row locks would on Postgres.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:bookstore_%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: gormlogger.New(
			log.New(io.Discard, "", log.LstdFlags),
			gormlogger.Config{LogLevel: gormlogger.Silent},
		),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

// SeedUser inserts a user with a unique username.
func SeedUser(t testing.TB, conn *gorm.DB, superuser bool) *models.User {
	t.Helper()
	user := &models.User{
		Username:     "user_" + uuid.NewString()[:8],
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Email:        "test@example.com",
		IsSuperuser:  superuser,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// SeedBook inserts a book owned by ownerID.
func SeedBook(t testing.TB, conn *gorm.DB, ownerID int64, price, quantity int64) *models.Book {
	t.Helper()
	book := &models.Book{
		Name:     "Book " + uuid.NewString()[:6],
		Author:   "Author",
		Price:    price,
		Quantity: quantity,
		UserID:   ownerID,
	}
	require.NoError(t, conn.Create(book).Error)
	return book
}
