// Package testenv builds throwaway sqlite-backed stores for tests.
package testenv

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/restaurant/pkg/db"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/models"
	"github.com/Skotchmaster/restaurant/internal/repo"
)

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := pkgdb.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(NewDB(t))
}

func MenuItem(t *testing.T, r *repo.GormRepo, name, price string) *models.MenuItem {
	t.Helper()

	item := &models.MenuItem{
		Name:            name,
		Price:           decimal.RequireFromString(price),
		Category:        "mains",
		PreparationTime: 10,
		Available:       true,
	}
	require.NoError(t, r.CreateMenuItem(context.Background(), item))
	return item
}

func Chef(t *testing.T, r *repo.GormRepo, name string, status domain.ChefStatus) *models.Chef {
	t.Helper()

	chef := &models.Chef{Name: name, Status: status}
	require.NoError(t, r.CreateChef(context.Background(), chef))
	return chef
}
