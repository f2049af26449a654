// Package directory is a read-through cache of the menu and chef roster.
// When the backend fails it serves the last good copy flagged as stale.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/models"
)

const (
	menuKey  = "directory:menu"
	chefsKey = "directory:chefs"

	DefaultTTL = 30 * time.Second
)

type Source interface {
	ListMenuItems(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error)
	ListChefs(ctx context.Context, status *domain.ChefStatus) ([]models.Chef, error)
}

type Menu struct {
	Items     []models.MenuItem `json:"items"`
	FetchedAt time.Time         `json:"fetched_at"`
	Stale     bool              `json:"stale"`
}

type Chefs struct {
	Chefs     []models.Chef `json:"chefs"`
	FetchedAt time.Time     `json:"fetched_at"`
	Stale     bool          `json:"stale"`
}

type Directory struct {
	source Source
	cache  Cache
	ttl    time.Duration
	log    *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	lastMenu  *Menu
	lastChefs *Chefs
}

func New(source Source, cache Cache, ttl time.Duration, log *slog.Logger) *Directory {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Directory{source: source, cache: cache, ttl: ttl, log: log}
}

// ListAvailableMenuItems never clears what callers already show: on a
// backend failure it returns the last good menu with Stale set.
func (d *Directory) ListAvailableMenuItems(ctx context.Context) (Menu, error) {
	var cached Menu
	if ok, err := d.cache.Get(ctx, menuKey, &cached); err != nil {
		d.log.Warn("directory_cache_error", "key", menuKey, "error", err)
	} else if ok {
		return cached, nil
	}

	v, err, _ := d.group.Do(menuKey, func() (any, error) {
		var m Menu
		if ok, err := d.cache.Get(ctx, menuKey, &m); err == nil && ok {
			return m, nil
		}
		return d.loadMenu(ctx)
	})
	if err != nil {
		return d.staleMenu(err)
	}
	return v.(Menu), nil
}

// ListChefs filters the cached roster by status when one is given.
func (d *Directory) ListChefs(ctx context.Context, status *domain.ChefStatus) (Chefs, error) {
	var all Chefs
	ok, err := d.cache.Get(ctx, chefsKey, &all)
	if err != nil {
		d.log.Warn("directory_cache_error", "key", chefsKey, "error", err)
	}
	if err != nil || !ok {
		v, loadErr, _ := d.group.Do(chefsKey, func() (any, error) {
			var c Chefs
			if ok, err := d.cache.Get(ctx, chefsKey, &c); err == nil && ok {
				return c, nil
			}
			return d.loadChefs(ctx)
		})
		if loadErr != nil {
			all, err = d.staleChefs(loadErr)
			if err != nil {
				return Chefs{}, err
			}
		} else {
			all = v.(Chefs)
		}
	}

	if status == nil {
		return all, nil
	}
	out := Chefs{FetchedAt: all.FetchedAt, Stale: all.Stale, Chefs: []models.Chef{}}
	for _, ch := range all.Chefs {
		if ch.Status == *status {
			out.Chefs = append(out.Chefs, ch)
		}
	}
	return out, nil
}

// MenuItem resolves an orderable menu item.
func (d *Directory) MenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	menu, err := d.ListAvailableMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	for i := range menu.Items {
		if menu.Items[i].ID == id {
			item := menu.Items[i]
			return &item, nil
		}
	}
	return nil, fmt.Errorf("%w: menu item %s is not on the menu", domain.ErrNotFound, id)
}

// Reload drops cached copies and fetches both lists again.
func (d *Directory) Reload(ctx context.Context) error {
	if err := d.cache.Delete(ctx, menuKey, chefsKey); err != nil {
		d.log.Warn("directory_cache_error", "error", err)
	}

	_, menuErr, _ := d.group.Do(menuKey, func() (any, error) { return d.loadMenu(ctx) })
	_, chefsErr, _ := d.group.Do(chefsKey, func() (any, error) { return d.loadChefs(ctx) })
	return errors.Join(menuErr, chefsErr)
}

var _ events.Publisher = (*Directory)(nil)

// Publish drops the cached roster when an event changes a chef's status or
// order count, so the next read goes to the backend.
func (d *Directory) Publish(ctx context.Context, ev events.OrderEvent) error {
	switch ev.Type {
	case events.ChefStatusChanged, events.OrderAssigned, events.OrderReady, events.OrderCancelled:
	default:
		return nil
	}
	if ev.ChefID == nil {
		return nil
	}
	if err := d.cache.Delete(ctx, chefsKey); err != nil {
		d.log.Warn("directory_cache_error", "key", chefsKey, "error", err)
		return err
	}
	return nil
}

// Run reloads on every tick until ctx is done.
func (d *Directory) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := d.Reload(ctx); err != nil && ctx.Err() == nil {
				d.log.Warn("directory_refresh_error", "error", err)
			}
		}
	}
}

func (d *Directory) loadMenu(ctx context.Context) (Menu, error) {
	items, err := d.source.ListMenuItems(ctx, true)
	if err != nil {
		return Menu{}, err
	}
	if items == nil {
		items = []models.MenuItem{}
	}

	m := Menu{Items: items, FetchedAt: time.Now().UTC()}
	if err := d.cache.Set(ctx, menuKey, m, d.ttl); err != nil {
		d.log.Warn("directory_cache_error", "key", menuKey, "error", err)
	}

	d.mu.Lock()
	d.lastMenu = &m
	d.mu.Unlock()
	return m, nil
}

func (d *Directory) loadChefs(ctx context.Context) (Chefs, error) {
	chefs, err := d.source.ListChefs(ctx, nil)
	if err != nil {
		return Chefs{}, err
	}
	if chefs == nil {
		chefs = []models.Chef{}
	}

	c := Chefs{Chefs: chefs, FetchedAt: time.Now().UTC()}
	if err := d.cache.Set(ctx, chefsKey, c, d.ttl); err != nil {
		d.log.Warn("directory_cache_error", "key", chefsKey, "error", err)
	}

	d.mu.Lock()
	d.lastChefs = &c
	d.mu.Unlock()
	return c, nil
}

func (d *Directory) staleMenu(cause error) (Menu, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.lastMenu == nil {
		return Menu{}, fmt.Errorf("%w: menu: %w", domain.ErrBackendUnavailable, cause)
	}
	d.log.Warn("directory_stale", "key", menuKey, "error", cause)
	m := *d.lastMenu
	m.Stale = true
	return m, nil
}

func (d *Directory) staleChefs(cause error) (Chefs, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.lastChefs == nil {
		return Chefs{}, fmt.Errorf("%w: chefs: %w", domain.ErrBackendUnavailable, cause)
	}
	d.log.Warn("directory_stale", "key", chefsKey, "error", cause)
	c := *d.lastChefs
	c.Stale = true
	return c, nil
}
