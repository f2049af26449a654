package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant/internal/cart"
	"github.com/Skotchmaster/restaurant/internal/models"
)

type AddCartItemRequest struct {
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	Quantity     int       `json:"quantity"`
	SpecialNotes string    `json:"special_notes"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	CartID   uuid.UUID       `json:"cart_id"`
	Lines    []cart.Line     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Quantity int             `json:"quantity"`
}

func NewCartResponse(id uuid.UUID, c *cart.Cart) CartResponse {
	lines := c.Lines()
	qty := 0
	for _, l := range lines {
		qty += l.Quantity
	}
	return CartResponse{
		CartID:   id,
		Lines:    lines,
		Total:    cart.Total(lines),
		Quantity: qty,
	}
}

type CheckoutRequest struct {
	CustomerName string `json:"customer_name"`
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type AssignRequest struct {
	ChefID uuid.UUID `json:"chef_id"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type OrderDetail struct {
	*models.Order
	Payments []models.Payment `json:"payments"`
}

type ListResponse[T any] struct {
	Items []T  `json:"items"`
	Stale bool `json:"stale,omitempty"`
}
