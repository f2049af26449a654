package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant/internal/models"
)

func (r *GormRepo) ListMenuItems(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.MenuItem{})
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}

	var items []models.MenuItem
	if err := q.Order("category ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) CountMenuItems(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.MenuItem{}).Count(&n).Error
	return n, err
}
