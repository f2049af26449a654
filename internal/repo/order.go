package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/models"
)

// ItemUpdate changes one line item of the order being updated.
type ItemUpdate struct {
	ItemID uuid.UUID
	Status domain.ItemStatus
}

// ChefUpdate moves a chef's current_orders_count by Delta (+1 or -1). An
// increment only succeeds when the chef is available, or busy with fewer than
// Capacity orders.
type ChefUpdate struct {
	ChefID   uuid.UUID
	Delta    int
	Capacity int
}

// OrderUpdate is one transition applied as a single transaction: the order row
// is compare-and-swapped on Version, then the optional item, chef and payment
// writes follow. Any failure rolls everything back.
type OrderUpdate struct {
	OrderID uuid.UUID
	Version int64
	Set     map[string]any
	Item    *ItemUpdate
	Chef    *ChefUpdate
	Payment *models.Payment
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *GormRepo) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", number).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", preloadItems).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f domain.OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Preload("Items", preloadItems)

	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ChefID != nil {
		q = q.Where("assigned_chef_id = ?", *f.ChefID)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.NewestFirst {
		q = q.Order("created_at DESC").Order("order_number DESC")
	} else {
		q = q.Order("created_at ASC").Order("order_number ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrder(ctx context.Context, u OrderUpdate) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		set := make(map[string]any, len(u.Set)+2)
		for k, v := range u.Set {
			set[k] = v
		}
		set["version"] = gorm.Expr("version + 1")
		set["updated_at"] = time.Now().UTC()

		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", u.OrderID, u.Version).
			Updates(set)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}

		if u.Item != nil {
			res := tx.Model(&models.OrderItem{}).
				Where("id = ? AND cashier_order_id = ?", u.Item.ItemID, u.OrderID).
				Update("status", u.Item.Status)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		if u.Chef != nil {
			if err := applyChefDelta(tx, *u.Chef); err != nil {
				return err
			}
		}

		if u.Payment != nil {
			if err := tx.Create(u.Payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func applyChefDelta(tx *gorm.DB, c ChefUpdate) error {
	q := tx.Model(&models.Chef{}).Where("id = ?", c.ChefID)

	switch {
	case c.Delta > 0:
		q = q.Where("status = ? OR (status = ? AND current_orders_count < ?)",
			domain.ChefAvailable, domain.ChefBusy, c.Capacity)
		res := q.Update("current_orders_count", gorm.Expr("current_orders_count + ?", c.Delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrChefRejected
		}
	case c.Delta < 0:
		q = q.Where("current_orders_count >= ?", -c.Delta)
		res := q.Update("current_orders_count", gorm.Expr("current_orders_count - ?", -c.Delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCounterUnderflow
		}
	}
	return nil
}

// CountActiveOrders counts the chef's assigned and in_preparation orders; the
// chef counter must always equal it.
func (r *GormRepo) CountActiveOrders(ctx context.Context, chefID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("assigned_chef_id = ? AND status IN ?", chefID,
			[]domain.OrderStatus{domain.OrderAssigned, domain.OrderInPreparation}).
		Count(&n).Error
	return n, err
}
