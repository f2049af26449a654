package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant/internal/cart"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
)

const maxNumberAttempts = 5

// CreateOrder persists the order and all of its items as one unit. The total
// is computed here from the line snapshots.
func (c *Coordinator) CreateOrder(ctx context.Context, customerName string, lines []cart.Line) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: add at least one item", domain.ErrEmptyCart)
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is blank", domain.ErrInvalidCustomerName)
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i, l := range lines {
		if l.MenuItemID == uuid.Nil {
			return nil, fmt.Errorf("%w: line %d: menu_item_id required", domain.ErrValidation, i)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d: quantity must be > 0", domain.ErrValidation, i)
		}
		if !l.Price.IsPositive() {
			return nil, fmt.Errorf("%w: line %d: price must be > 0", domain.ErrValidation, i)
		}
		items = append(items, models.OrderItem{
			MenuItemID:   l.MenuItemID,
			Name:         l.Name,
			Position:     i,
			Quantity:     l.Quantity,
			Price:        l.Price,
			SpecialNotes: l.Notes,
			Status:       domain.ItemPending,
		})
	}

	order := &models.Order{
		CustomerName:  name,
		TotalAmount:   cart.Total(lines),
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := c.Numbers.Next()
		taken, err := c.Store.OrderNumberExists(ctx, number)
		if err != nil {
			return nil, storeErr(err, "order number")
		}
		if taken {
			continue
		}

		order.ID = uuid.Nil
		order.OrderNumber = number
		order.Items = make([]models.OrderItem, len(items))
		copy(order.Items, items)

		err = c.Store.CreateOrder(ctx, order)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "order")
		}

		c.publish(ctx, events.OrderCreated, order, events.OrderEvent{})
		return order, nil
	}
	return nil, fmt.Errorf("%w: could not allocate an order number", domain.ErrConcurrentModification)
}

func (c *Coordinator) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return c.loadOrder(ctx, id)
}

func (c *Coordinator) ListOrders(ctx context.Context, f domain.OrderFilter) ([]models.Order, error) {
	for _, s := range f.Statuses {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
		}
	}
	orders, err := c.Store.ListOrders(ctx, f)
	if err != nil {
		return nil, storeErr(err, "orders")
	}
	return orders, nil
}

// ChefOrders is the chef's queue: assigned and in-preparation orders, oldest
// first.
func (c *Coordinator) ChefOrders(ctx context.Context, chefID uuid.UUID) ([]models.Order, error) {
	if _, err := c.Store.GetChef(ctx, chefID); err != nil {
		return nil, storeErr(err, "chef "+chefID.String())
	}
	return c.ListOrders(ctx, domain.ChefQueue(chefID))
}

func (c *Coordinator) ReadyOrders(ctx context.Context) ([]models.Order, error) {
	return c.ListOrders(ctx, domain.ReadyQueue())
}

func (c *Coordinator) Payments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if _, err := c.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	payments, err := c.Store.ListPayments(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "payments")
	}
	return payments, nil
}
