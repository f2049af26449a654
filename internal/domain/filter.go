package domain

import "github.com/google/uuid"

// OrderFilter selects orders for listings and bridge subscriptions. Zero
// values match everything.
type OrderFilter struct {
	Statuses      []OrderStatus
	ChefID        *uuid.UUID
	PaymentStatus PaymentStatus
	// NewestFirst flips the default oldest-first ordering.
	NewestFirst bool
	Limit       int
	Offset      int
}

func (f OrderFilter) Match(status OrderStatus, payment PaymentStatus, chefID *uuid.UUID) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PaymentStatus != "" && f.PaymentStatus != payment {
		return false
	}
	if f.ChefID != nil && (chefID == nil || *chefID != *f.ChefID) {
		return false
	}
	return true
}

func ChefQueue(chefID uuid.UUID) OrderFilter {
	return OrderFilter{
		Statuses: []OrderStatus{OrderAssigned, OrderInPreparation},
		ChefID:   &chefID,
	}
}

func ReadyQueue() OrderFilter {
	return OrderFilter{Statuses: []OrderStatus{OrderReady}}
}
