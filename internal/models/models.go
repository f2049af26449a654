package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant/internal/domain"
)

type MenuItem struct {
	ID              uuid.UUID       `gorm:"primaryKey"                       json:"id"`
	Name            string          `gorm:"not null"                         json:"name"`
	Description     string          `                                        json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"      json:"price"`
	Category        string          `gorm:"index;not null"                   json:"category"`
	PreparationTime int             `gorm:"not null;check:preparation_time>0" json:"preparation_time"`
	ImageURL        string          `                                        json:"image_url,omitempty"`
	Available       bool            `gorm:"not null;default:true"            json:"available"`
	CreatedAt       time.Time       `                                        json:"created_at"`
}

type Chef struct {
	ID                 uuid.UUID         `gorm:"primaryKey"                                  json:"id"`
	Name               string            `gorm:"not null"                                    json:"name"`
	Status             domain.ChefStatus `gorm:"type:varchar(20);not null;default:available" json:"status"`
	CurrentOrdersCount int               `gorm:"not null;default:0;check:current_orders_count>=0" json:"current_orders_count"`
	CreatedAt          time.Time         `                                                   json:"created_at"`
}

// Order is a cashier order; the admin-facing orders table is a separate
// concern and not modelled here.
type Order struct {
	ID             uuid.UUID            `gorm:"primaryKey"                                json:"id"`
	OrderNumber    string               `gorm:"uniqueIndex;not null"                      json:"order_number"`
	CustomerName   string               `gorm:"not null"                                  json:"customer_name"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(10,2);not null"               json:"total_amount"`
	Status         domain.OrderStatus   `gorm:"type:varchar(20);index;not null"           json:"status"`
	PaymentStatus  domain.PaymentStatus `gorm:"type:varchar(20);not null"                 json:"payment_status"`
	PaymentMethod  string               `gorm:"type:varchar(20)"                          json:"payment_method,omitempty"`
	AssignedChefID *uuid.UUID           `gorm:"index"                                     json:"assigned_chef_id,omitempty"`
	Version        int64                `gorm:"not null;default:1"                        json:"version"`
	CreatedAt      time.Time            `gorm:"index"                                     json:"created_at"`
	UpdatedAt      time.Time            `                                                 json:"updated_at"`
	CompletedAt    *time.Time           `                                                 json:"completed_at,omitempty"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"items,omitempty"`
}

type OrderItem struct {
	ID           uuid.UUID         `gorm:"primaryKey"                         json:"id"`
	OrderID      uuid.UUID         `gorm:"column:cashier_order_id;index;not null" json:"cashier_order_id"`
	MenuItemID   uuid.UUID         `gorm:"not null"                           json:"menu_item_id"`
	Name         string            `                                          json:"name"`
	Position     int               `gorm:"not null;default:0"                 json:"position"`
	Quantity     int               `gorm:"not null;check:quantity>0"          json:"quantity"`
	Price        decimal.Decimal   `gorm:"type:decimal(10,2);not null"        json:"price"`
	SpecialNotes string            `                                          json:"special_notes,omitempty"`
	Status       domain.ItemStatus `gorm:"type:varchar(20);not null"          json:"status"`
	CreatedAt    time.Time         `                                          json:"created_at"`
}

type Payment struct {
	ID            uuid.UUID            `gorm:"primaryKey"                          json:"id"`
	OrderID       uuid.UUID            `gorm:"column:cashier_order_id;index;not null" json:"cashier_order_id"`
	Amount        decimal.Decimal      `gorm:"type:decimal(10,2);not null"         json:"amount"`
	Method        domain.PaymentMethod `gorm:"type:varchar(20);not null"           json:"method"`
	Status        domain.PaymentStatus `gorm:"type:varchar(20);not null"           json:"status"`
	TransactionID string               `                                           json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `                                           json:"created_at"`
}

func (MenuItem) TableName() string  { return "menu_items" }
func (Chef) TableName() string      { return "chefs" }
func (Order) TableName() string     { return "cashier_orders" }
func (OrderItem) TableName() string { return "order_items" }
func (Payment) TableName() string   { return "payments" }

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (c *Chef) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AllItemsReady is false for an order without items.
func (o *Order) AllItemsReady() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if it.Status != domain.ItemReady {
			return false
		}
	}
	return true
}

func (o *Order) Item(id uuid.UUID) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

func All() []any {
	return []any{&MenuItem{}, &Chef{}, &Order{}, &OrderItem{}, &Payment{}}
}
