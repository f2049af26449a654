package service

import (
	"fmt"
	"sync"
	"time"
)

// OrderNumbers issues ORD-<unix millis> numbers that strictly increase within
// the process even when the clock stalls or steps back.
type OrderNumbers struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewOrderNumbers(now func() time.Time) *OrderNumbers {
	if now == nil {
		now = time.Now
	}
	return &OrderNumbers{now: now}
}

func (g *OrderNumbers) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}
