// Package bridge keeps chef and waiter views in step with orders changed by
// other people. Each subscription polls on an interval; lifecycle events
// trigger an early refresh.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
)

// StaleWarning is what subscribers see when a refresh failed. The cause stays
// in the server log.
const StaleWarning = "backend unavailable, showing last data"

// Source lists orders. Outages must be reported as domain.ErrBackendUnavailable
// to be retried; *service.Coordinator does that mapping.
type Source interface {
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]models.Order, error)
}

type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 3 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

type Bridge struct {
	source Source
	cfg    Config
	log    *slog.Logger

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

var _ events.Publisher = (*Bridge)(nil)

func New(source Source, cfg Config, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		source: source,
		cfg:    cfg.withDefaults(),
		log:    log,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe starts polling for orders matching filter. The first update is
// fetched immediately. The subscription ends when ctx is done or Close is
// called; the updates channel is then closed.
func (b *Bridge) Subscribe(ctx context.Context, filter domain.OrderFilter) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		bridge:  b,
		filter:  filter,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan Update),
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		known:   make(map[uuid.UUID]struct{}),
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go s.run()
	return s
}

func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bridge) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Publish asks every subscription that shows, or should now show, the order
// to refresh. It never blocks on subscribers.
func (b *Bridge) Publish(_ context.Context, ev events.OrderEvent) error {
	if ev.OrderID == uuid.Nil {
		return nil
	}

	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		if s.filter.Match(ev.Status, ev.PaymentStatus, ev.ChefID) || s.shows(ev.OrderID) {
			s.Kick()
		}
	}
	return nil
}

type Subscription struct {
	bridge *Bridge
	filter domain.OrderFilter
	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	updates chan Update
	kick    chan struct{}
	done    chan struct{}

	sendMu sync.Mutex
	closed bool
	seq    uint64

	knownMu sync.Mutex
	known   map[uuid.UUID]struct{}
}

func (s *Subscription) Updates() <-chan Update { return s.updates }

func (s *Subscription) Done() <-chan struct{} { return s.done }

// Kick requests a refresh without waiting for it. Requests made while one is
// already queued are dropped.
func (s *Subscription) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Refresh fetches and delivers now. Concurrent calls share one fetch.
func (s *Subscription) Refresh(ctx context.Context) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.fetch(ctx)
	})
	return err
}

// Close stops polling and waits until nothing more can be delivered.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run() {
	defer func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.updates)
		s.sendMu.Unlock()
		s.bridge.remove(s)
		close(s.done)
	}()

	_ = s.Refresh(s.ctx)

	t := time.NewTicker(s.bridge.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
		case <-s.kick:
		}
		_ = s.Refresh(s.ctx)
	}
}

func (s *Subscription) fetch(ctx context.Context) error {
	orders, err := s.fetchWithRetry(ctx)
	if s.ctx.Err() != nil {
		return s.ctx.Err()
	}
	if err != nil {
		s.bridge.log.Warn("bridge_refresh_error", "error", err)
		s.deliver(Update{Stale: true, Warning: StaleWarning})
		return err
	}

	snaps := make([]Snapshot, 0, len(orders))
	known := make(map[uuid.UUID]struct{}, len(orders))
	for i := range orders {
		snaps = append(snaps, SnapshotOf(&orders[i]))
		known[orders[i].ID] = struct{}{}
	}

	s.knownMu.Lock()
	s.known = known
	s.knownMu.Unlock()

	s.deliver(Update{Snapshots: snaps})
	return nil
}

// fetchWithRetry retries only backend outages, with exponential backoff.
func (s *Subscription) fetchWithRetry(ctx context.Context) ([]models.Order, error) {
	cfg := s.bridge.cfg
	wait := cfg.Backoff

	for attempt := 1; ; attempt++ {
		orders, err := s.bridge.source.ListOrders(ctx, s.filter)
		if err == nil {
			return orders, nil
		}
		if !errors.Is(err, domain.ErrBackendUnavailable) || attempt >= cfg.MaxAttempts {
			return nil, err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-s.ctx.Done():
			timer.Stop()
			return nil, s.ctx.Err()
		case <-timer.C:
		}

		wait *= 2
		if wait > cfg.MaxBackoff {
			wait = cfg.MaxBackoff
		}
	}
}

func (s *Subscription) deliver(u Update) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed || s.ctx.Err() != nil {
		return false
	}
	u.Seq = s.seq + 1
	u.At = time.Now().UTC()

	select {
	case s.updates <- u:
		s.seq = u.Seq
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Subscription) shows(id uuid.UUID) bool {
	s.knownMu.Lock()
	defer s.knownMu.Unlock()
	_, ok := s.known[id]
	return ok
}
