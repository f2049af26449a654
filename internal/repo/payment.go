package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant/internal/models"
)

func (r *GormRepo) ListPayments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.DB.WithContext(ctx).
		Where("cashier_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
