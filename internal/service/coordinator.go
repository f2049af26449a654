// Package service is the order lifecycle coordinator: the only code path
// that changes order, item or chef state.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
	"github.com/Skotchmaster/restaurant/internal/repo"
	"github.com/Skotchmaster/restaurant/pkg/logging"
)

const DefaultChefCapacity = 3

// Store is the persistence the coordinator needs. *repo.GormRepo satisfies it.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]models.Order, error)
	UpdateOrder(ctx context.Context, u repo.OrderUpdate) error
	ListPayments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	GetChef(ctx context.Context, id uuid.UUID) (*models.Chef, error)
	SetChefStatus(ctx context.Context, id uuid.UUID, status domain.ChefStatus) (*models.Chef, error)
}

type Coordinator struct {
	Store   Store
	Numbers *OrderNumbers
	Gateway PaymentGateway
	Events  events.Publisher
	// ChefCapacity caps the orders a busy chef may hold.
	ChefCapacity int
	Now          func() time.Time
}

func NewCoordinator(store Store, pub events.Publisher) *Coordinator {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Coordinator{
		Store:        store,
		Numbers:      NewOrderNumbers(nil),
		Gateway:      ApproveAll{},
		Events:       pub,
		ChefCapacity: DefaultChefCapacity,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}

func (c *Coordinator) capacity() int {
	if c.ChefCapacity <= 0 {
		return DefaultChefCapacity
	}
	return c.ChefCapacity
}

// storeErr translates persistence failures into the domain taxonomy.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	case errors.Is(err, repo.ErrStale):
		return fmt.Errorf("%w: %s was changed by someone else, reload and retry", domain.ErrConcurrentModification, what)
	case errors.Is(err, repo.ErrChefRejected):
		return fmt.Errorf("%w: chef cannot take more orders", domain.ErrChefUnavailable)
	case errors.Is(err, repo.ErrCounterUnderflow):
		return fmt.Errorf("%w: chef counter already at zero", domain.ErrConcurrentModification)
	}
	return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
}

func (c *Coordinator) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := c.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order "+id.String())
	}
	return order, nil
}

// commit applies u and, once stored, mirrors it on the in-memory order with
// mutate so callers get the new state without a second read.
func (c *Coordinator) commit(ctx context.Context, order *models.Order, u repo.OrderUpdate, mutate func(*models.Order)) error {
	u.OrderID = order.ID
	u.Version = order.Version
	if err := c.Store.UpdateOrder(ctx, u); err != nil {
		return storeErr(err, "order "+order.OrderNumber)
	}

	if mutate != nil {
		mutate(order)
	}
	order.Version++
	order.UpdatedAt = c.now()
	return nil
}

func (c *Coordinator) publish(ctx context.Context, typ events.Type, order *models.Order, ev events.OrderEvent) {
	ev.Type = typ
	if order != nil {
		ev.OrderID = order.ID
		ev.OrderNumber = order.OrderNumber
		ev.Status = order.Status
		ev.PaymentStatus = order.PaymentStatus
		ev.Version = order.Version
		if ev.ChefID == nil {
			ev.ChefID = order.AssignedChefID
		}
	}
	ev.OccurredAt = c.now()

	if err := c.Events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "type", typ, "order_id", ev.OrderID, "error", err)
	}
}
