package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
	"github.com/Skotchmaster/restaurant/internal/repo"
)

var ErrDeclined = errors.New("declined")

type ChargeRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	Method      domain.PaymentMethod
}

// PaymentGateway charges card and online payments and returns the provider
// transaction id.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// ApproveAll accepts every charge.
type ApproveAll struct{}

func (ApproveAll) Charge(context.Context, ChargeRequest) (string, error) {
	return "TXN-" + uuid.NewString(), nil
}

type PaymentResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
	Change  decimal.Decimal `json:"change"`
}

// RecordPayment settles the order. Cash must cover the total and yields
// change; card and online are charged the order total through the gateway.
func (c *Coordinator) RecordPayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, method domain.PaymentMethod) (*PaymentResult, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, method)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be > 0", domain.ErrValidation)
	}

	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", domain.ErrOrderLocked)
	}
	if order.PaymentStatus == domain.PaymentCompleted {
		return nil, fmt.Errorf("%w: order is already paid", domain.ErrInvalidTransition)
	}

	payment := &models.Payment{
		OrderID: order.ID,
		Method:  method,
		Status:  domain.PaymentCompleted,
	}
	change := decimal.Zero

	switch method {
	case domain.MethodCash:
		if amount.LessThan(order.TotalAmount) {
			return nil, fmt.Errorf("%w: %s is less than %s", domain.ErrInsufficientAmount, amount.StringFixed(2), order.TotalAmount.StringFixed(2))
		}
		payment.Amount = amount
		change = amount.Sub(order.TotalAmount)
	default:
		payment.Amount = order.TotalAmount
		txn, chargeErr := c.Gateway.Charge(ctx, ChargeRequest{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Amount:      order.TotalAmount,
			Method:      method,
		})
		if chargeErr != nil {
			return nil, c.recordDecline(ctx, order, payment, chargeErr)
		}
		payment.TransactionID = txn
	}

	u := repo.OrderUpdate{
		Set: map[string]any{
			"payment_status": domain.PaymentCompleted,
			"payment_method": string(method),
		},
		Payment: payment,
	}
	err = c.commit(ctx, order, u, func(o *models.Order) {
		o.PaymentStatus = domain.PaymentCompleted
		o.PaymentMethod = string(method)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.PaymentRecorded, order, events.OrderEvent{})
	return &PaymentResult{Order: order, Payment: payment, Change: change}, nil
}

func (c *Coordinator) recordDecline(ctx context.Context, order *models.Order, payment *models.Payment, cause error) error {
	payment.Status = domain.PaymentFailed

	u := repo.OrderUpdate{
		Set:     map[string]any{"payment_status": domain.PaymentFailed},
		Payment: payment,
	}
	err := c.commit(ctx, order, u, func(o *models.Order) {
		o.PaymentStatus = domain.PaymentFailed
	})
	if err != nil {
		return err
	}

	c.publish(ctx, events.PaymentFailed, order, events.OrderEvent{})
	return fmt.Errorf("%w: %w", domain.ErrPaymentFailed, cause)
}
