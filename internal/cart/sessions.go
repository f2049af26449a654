package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant/internal/domain"
)

// Sessions keeps one draft per cashier session. Drafts live only in memory.
type Sessions struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

func NewSessions() *Sessions {
	return &Sessions{carts: make(map[uuid.UUID]*Cart)}
}

func (s *Sessions) Open() (uuid.UUID, *Cart) {
	id := uuid.New()
	c := New()

	s.mu.Lock()
	s.carts[id] = c
	s.mu.Unlock()
	return id, c
}

func (s *Sessions) Get(id uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, fmt.Errorf("%w: cart %s", domain.ErrNotFound, id)
	}
	return c, nil
}

// Take removes the cart from the session table so no other request can use
// it. Put it back with Restore if the checkout fails.
func (s *Sessions) Take(id uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, fmt.Errorf("%w: cart %s", domain.ErrNotFound, id)
	}
	delete(s.carts, id)
	return c, nil
}

func (s *Sessions) Restore(id uuid.UUID, c *Cart) {
	s.mu.Lock()
	s.carts[id] = c
	s.mu.Unlock()
}

func (s *Sessions) Discard(id uuid.UUID) {
	s.mu.Lock()
	delete(s.carts, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}
