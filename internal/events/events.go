// Package events carries order lifecycle notifications to other processes
// and to in-process subscribers.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/mykafka"
)

type Type string

const (
	OrderCreated      Type = "order_created"
	PaymentRecorded   Type = "payment_recorded"
	PaymentFailed     Type = "payment_failed"
	OrderAssigned     Type = "order_assigned"
	ItemStatusChanged Type = "item_status_changed"
	OrderReady        Type = "order_ready"
	OrderCompleted    Type = "order_completed"
	OrderCancelled    Type = "order_cancelled"
	ChefStatusChanged Type = "chef_status_changed"
)

type OrderEvent struct {
	Type          Type                 `json:"type"`
	OrderID       uuid.UUID            `json:"order_id"`
	OrderNumber   string               `json:"order_number,omitempty"`
	Status        domain.OrderStatus   `json:"status,omitempty"`
	PaymentStatus domain.PaymentStatus `json:"payment_status,omitempty"`
	ChefID        *uuid.UUID           `json:"chef_id,omitempty"`
	ItemID        *uuid.UUID           `json:"item_id,omitempty"`
	Version       int64                `json:"version"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// Key partitions events by order, or by chef for chef-only events.
func (e OrderEvent) Key() string {
	if e.OrderID != uuid.Nil {
		return e.OrderID.String()
	}
	if e.ChefID != nil {
		return e.ChefID.String()
	}
	return ""
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }

// Multi delivers to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type KafkaPublisher struct {
	Producer *mykafka.Producer
	Topic    string
	Log      *slog.Logger
}

func (k *KafkaPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	if err := k.Producer.PublishEvent(ctx, k.Topic, ev.Key(), ev); err != nil {
		if k.Log != nil {
			k.Log.Warn("publish_event_error", "topic", k.Topic, "type", ev.Type, "order_id", ev.OrderID, "error", err)
		}
		return err
	}
	return nil
}
