package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/models"
)

func (r *GormRepo) GetChef(ctx context.Context, id uuid.UUID) (*models.Chef, error) {
	var chef models.Chef
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&chef).Error; err != nil {
		return nil, err
	}
	return &chef, nil
}

// ListChefs orders by load, least busy first, the way the assignment picker
// shows them.
func (r *GormRepo) ListChefs(ctx context.Context, status *domain.ChefStatus) ([]models.Chef, error) {
	q := r.DB.WithContext(ctx).Model(&models.Chef{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var chefs []models.Chef
	if err := q.Order("current_orders_count ASC").Order("name ASC").Find(&chefs).Error; err != nil {
		return nil, err
	}
	return chefs, nil
}

func (r *GormRepo) CreateChef(ctx context.Context, chef *models.Chef) error {
	return r.DB.WithContext(ctx).Create(chef).Error
}

func (r *GormRepo) SetChefStatus(ctx context.Context, id uuid.UUID, status domain.ChefStatus) (*models.Chef, error) {
	var chef models.Chef
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Chef{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&chef).Error
	})
	if err != nil {
		return nil, err
	}
	return &chef, nil
}
