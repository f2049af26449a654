package domain

import "fmt"

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:       {OrderAssigned, OrderCancelled},
	OrderAssigned:      {OrderInPreparation, OrderReady, OrderCancelled},
	OrderInPreparation: {OrderReady, OrderCancelled},
	OrderReady:         {OrderCompleted, OrderCancelled},
}

// CanTransition checks the order lifecycle table only; preconditions that
// depend on items, payment or chef state are checked by the coordinator.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrOrderLocked for terminal orders and
// ErrInvalidTransition for any move outside the table.
func CheckTransition(from, to OrderStatus) error {
	if from.Terminal() {
		return fmt.Errorf("%w: order is %s", ErrOrderLocked, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CheckItemUpdate decides whether kitchen staff may change item statuses on
// an order in the given state.
func CheckItemUpdate(order OrderStatus) error {
	switch {
	case order == OrderReady || order.Terminal():
		return fmt.Errorf("%w: order is %s", ErrOrderLocked, order)
	case order == OrderPending:
		return fmt.Errorf("%w: order is not assigned to a chef", ErrInvalidTransition)
	}
	return nil
}
