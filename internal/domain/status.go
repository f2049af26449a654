package domain

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderAssigned      OrderStatus = "assigned"
	OrderInPreparation OrderStatus = "in_preparation"
	OrderReady         OrderStatus = "ready"
	OrderCompleted     OrderStatus = "completed"
	OrderCancelled     OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAssigned, OrderInPreparation, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal orders accept no further mutation.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Active orders count towards their chef's current_orders_count.
func (s OrderStatus) Active() bool {
	return s == OrderAssigned || s == OrderInPreparation
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemCooking ItemStatus = "cooking"
	ItemReady   ItemStatus = "ready"
)

func (s ItemStatus) Valid() bool {
	return s == ItemPending || s == ItemCooking || s == ItemReady
}

type ChefStatus string

const (
	ChefAvailable   ChefStatus = "available"
	ChefBusy        ChefStatus = "busy"
	ChefUnavailable ChefStatus = "unavailable"
)

func (s ChefStatus) Valid() bool {
	return s == ChefAvailable || s == ChefBusy || s == ChefUnavailable
}

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodCard   PaymentMethod = "card"
	MethodOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodCard || m == MethodOnline
}
