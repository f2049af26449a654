package bridge

import (
	"sync"

	"github.com/google/uuid"
)

// Reconciler folds updates into a view on the consumer side. Updates that
// arrive late or twice are ignored, and an order snapshot is never replaced
// by one with a lower Version.
type Reconciler struct {
	mu      sync.Mutex
	lastSeq uint64
	orders  map[uuid.UUID]Snapshot
	order   []uuid.UUID
	stale   bool
	warning string
}

func NewReconciler() *Reconciler {
	return &Reconciler{orders: make(map[uuid.UUID]Snapshot)}
}

// Apply reports whether u was taken and whether updates were skipped before
// it. A stale update keeps the current view and only raises the warning.
func (r *Reconciler) Apply(u Update) (applied, gap bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.Seq <= r.lastSeq {
		return false, false
	}
	gap = u.Seq != r.lastSeq+1
	r.lastSeq = u.Seq

	if u.Stale {
		r.stale = true
		r.warning = u.Warning
		return true, gap
	}
	r.stale = false
	r.warning = ""

	next := make(map[uuid.UUID]Snapshot, len(u.Snapshots))
	order := make([]uuid.UUID, 0, len(u.Snapshots))
	for _, s := range u.Snapshots {
		if cur, ok := r.orders[s.OrderID]; ok && cur.Version > s.Version {
			s = cur
		}
		if _, dup := next[s.OrderID]; !dup {
			order = append(order, s.OrderID)
		}
		next[s.OrderID] = s
	}
	r.orders = next
	r.order = order
	return true, gap
}

// Merge applies a single pushed snapshot. It returns false when the view
// already holds the same or a newer Version.
func (r *Reconciler) Merge(s Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.orders[s.OrderID]
	if ok && cur.Version >= s.Version {
		return false
	}
	if !ok {
		r.order = append(r.order, s.OrderID)
	}
	r.orders[s.OrderID] = s
	return true
}

func (r *Reconciler) Get(id uuid.UUID) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.orders[id]
	return s, ok
}

// Orders lists the view in the order of the latest full update.
func (r *Reconciler) Orders() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.orders[id])
	}
	return out
}

func (r *Reconciler) Stale() (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stale, r.warning
}

func (r *Reconciler) LastSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSeq
}
