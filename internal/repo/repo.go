package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant/internal/models"
)

var (
	// ErrStale means the compare-and-swap on an order version matched no row.
	ErrStale = errors.New("stale version")
	// ErrChefRejected means the chef row did not accept one more order.
	ErrChefRejected = errors.New("chef rejected assignment")
	// ErrCounterUnderflow means a decrement found the chef counter at zero.
	ErrCounterUnderflow = errors.New("chef counter underflow")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
