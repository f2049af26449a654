package bridge

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/models"
)

type ItemSnapshot struct {
	ID           uuid.UUID         `json:"id"`
	MenuItemID   uuid.UUID         `json:"menu_item_id"`
	Name         string            `json:"name"`
	Quantity     int               `json:"quantity"`
	SpecialNotes string            `json:"special_notes,omitempty"`
	Status       domain.ItemStatus `json:"status"`
}

// Snapshot is an order as seen at Version. A higher Version always wins.
type Snapshot struct {
	OrderID        uuid.UUID            `json:"order_id"`
	OrderNumber    string               `json:"order_number"`
	CustomerName   string               `json:"customer_name"`
	Status         domain.OrderStatus   `json:"status"`
	PaymentStatus  domain.PaymentStatus `json:"payment_status"`
	AssignedChefID *uuid.UUID           `json:"assigned_chef_id,omitempty"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Version        int64                `json:"version"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Items          []ItemSnapshot       `json:"items"`
}

// Update is one delivery to a subscriber. Seq increases by one per delivery
// on a subscription. A failed refresh is delivered as Stale with a Warning
// and no snapshots.
type Update struct {
	Seq       uint64     `json:"seq"`
	Snapshots []Snapshot `json:"snapshots"`
	Stale     bool       `json:"stale,omitempty"`
	Warning   string     `json:"warning,omitempty"`
	At        time.Time  `json:"at"`
}

func SnapshotOf(o *models.Order) Snapshot {
	items := make([]ItemSnapshot, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemSnapshot{
			ID:           it.ID,
			MenuItemID:   it.MenuItemID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			SpecialNotes: it.SpecialNotes,
			Status:       it.Status,
		})
	}
	return Snapshot{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerName:   o.CustomerName,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		AssignedChefID: o.AssignedChefID,
		TotalAmount:    o.TotalAmount,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          items,
	}
}
