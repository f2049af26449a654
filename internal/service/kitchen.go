package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
	"github.com/Skotchmaster/restaurant/internal/repo"
)

// AssignToChef moves a pending order to the chef and bumps the chef counter
// in the same transaction. Of two concurrent calls on one order only one
// wins; the other gets ErrConcurrentModification.
func (c *Coordinator) AssignToChef(ctx context.Context, orderID, chefID uuid.UUID) (*models.Order, error) {
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(order.Status, domain.OrderAssigned); err != nil {
		return nil, err
	}

	chef, err := c.Store.GetChef(ctx, chefID)
	if err != nil {
		return nil, storeErr(err, "chef "+chefID.String())
	}
	switch {
	case chef.Status == domain.ChefUnavailable:
		return nil, fmt.Errorf("%w: %s is unavailable", domain.ErrChefUnavailable, chef.Name)
	case chef.Status == domain.ChefBusy && chef.CurrentOrdersCount >= c.capacity():
		return nil, fmt.Errorf("%w: %s already has %d orders", domain.ErrChefUnavailable, chef.Name, chef.CurrentOrdersCount)
	}

	u := repo.OrderUpdate{
		Set: map[string]any{
			"status":           domain.OrderAssigned,
			"assigned_chef_id": chef.ID,
		},
		Chef: &repo.ChefUpdate{ChefID: chef.ID, Delta: 1, Capacity: c.capacity()},
	}
	err = c.commit(ctx, order, u, func(o *models.Order) {
		o.Status = domain.OrderAssigned
		o.AssignedChefID = &chef.ID
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.OrderAssigned, order, events.OrderEvent{})
	return order, nil
}

// UpdateItemStatus lets the kitchen move an item freely between pending,
// cooking and ready until the order is ready. The first item to start
// cooking moves an assigned order to in_preparation.
func (c *Coordinator) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status domain.ItemStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown item status %q", domain.ErrValidation, status)
	}

	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckItemUpdate(order.Status); err != nil {
		return nil, err
	}
	item, ok := order.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: item %s on order %s", domain.ErrNotFound, itemID, order.OrderNumber)
	}
	if item.Status == status {
		return order, nil
	}

	set := map[string]any{}
	promote := status == domain.ItemCooking && order.Status == domain.OrderAssigned
	if promote {
		set["status"] = domain.OrderInPreparation
	}

	u := repo.OrderUpdate{
		Set:  set,
		Item: &repo.ItemUpdate{ItemID: itemID, Status: status},
	}
	err = c.commit(ctx, order, u, func(o *models.Order) {
		if it, ok := o.Item(itemID); ok {
			it.Status = status
		}
		if promote {
			o.Status = domain.OrderInPreparation
		}
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.ItemStatusChanged, order, events.OrderEvent{ItemID: &itemID})
	return order, nil
}

// MarkReady requires every item to be ready. The order leaves the chef's
// active set, so the chef counter goes down.
func (c *Coordinator) MarkReady(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(order.Status, domain.OrderReady); err != nil {
		return nil, err
	}
	if !order.AllItemsReady() {
		return nil, fmt.Errorf("%w: not all items of %s are ready", domain.ErrInvalidTransition, order.OrderNumber)
	}

	u := repo.OrderUpdate{
		Set:  map[string]any{"status": domain.OrderReady},
		Chef: releaseChef(order),
	}
	err = c.commit(ctx, order, u, func(o *models.Order) {
		o.Status = domain.OrderReady
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.OrderReady, order, events.OrderEvent{})
	return order, nil
}

// Complete hands a ready, paid order to the customer.
func (c *Coordinator) Complete(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(order.Status, domain.OrderCompleted); err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentCompleted {
		return nil, fmt.Errorf("%w: order %s is not paid", domain.ErrInvalidTransition, order.OrderNumber)
	}

	now := c.now()
	u := repo.OrderUpdate{
		Set: map[string]any{
			"status":       domain.OrderCompleted,
			"completed_at": now,
		},
	}
	err = c.commit(ctx, order, u, func(o *models.Order) {
		o.Status = domain.OrderCompleted
		o.CompletedAt = &now
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.OrderCompleted, order, events.OrderEvent{})
	return order, nil
}

// Cancel is terminal. An order still counted against its chef releases the
// chef.
func (c *Coordinator) Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(order.Status, domain.OrderCancelled); err != nil {
		return nil, err
	}

	u := repo.OrderUpdate{
		Set: map[string]any{"status": domain.OrderCancelled},
	}
	if order.Status.Active() {
		u.Chef = releaseChef(order)
	}
	err = c.commit(ctx, order, u, func(o *models.Order) {
		o.Status = domain.OrderCancelled
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.OrderCancelled, order, events.OrderEvent{})
	return order, nil
}

func releaseChef(order *models.Order) *repo.ChefUpdate {
	if order.AssignedChefID == nil {
		return nil
	}
	return &repo.ChefUpdate{ChefID: *order.AssignedChefID, Delta: -1}
}

// SetChefStatus is the only write path for chef availability.
func (c *Coordinator) SetChefStatus(ctx context.Context, chefID uuid.UUID, status domain.ChefStatus) (*models.Chef, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown chef status %q", domain.ErrValidation, status)
	}

	chef, err := c.Store.SetChefStatus(ctx, chefID, status)
	if err != nil {
		return nil, storeErr(err, "chef "+chefID.String())
	}

	c.publish(ctx, events.ChefStatusChanged, nil, events.OrderEvent{ChefID: &chef.ID})
	return chef, nil
}
