// Package cart holds the cashier's order draft until checkout.
package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant/internal/domain"
)

// Item is the menu item snapshot taken when it is first added.
type Item struct {
	MenuItemID uuid.UUID
	Name       string
	Price      decimal.Decimal
}

type Line struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Notes      string          `json:"special_notes,omitempty"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is safe for concurrent use. Lines keep insertion order.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add merges into the existing line for the same menu item: quantities are
// summed and notes are replaced by the latest non-empty value. The price of
// an existing line is not touched.
func (c *Cart) Add(item Item, quantity int, notes string) error {
	if item.MenuItemID == uuid.Nil {
		return fmt.Errorf("%w: menu_item_id required", domain.ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if !item.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(item.MenuItemID); i >= 0 {
		c.lines[i].Quantity += quantity
		if notes != "" {
			c.lines[i].Notes = notes
		}
		return nil
	}

	c.lines = append(c.lines, Line{
		MenuItemID: item.MenuItemID,
		Name:       item.Name,
		Quantity:   quantity,
		Price:      item.Price,
		Notes:      notes,
	})
	return nil
}

// SetQuantity removes the line when quantity <= 0.
func (c *Cart) SetQuantity(menuItemID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(menuItemID)
	if quantity <= 0 {
		if i >= 0 {
			c.removeAt(i)
		}
		return nil
	}
	if i < 0 {
		return fmt.Errorf("%w: menu item %s is not in the cart", domain.ErrNotFound, menuItemID)
	}
	c.lines[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(menuItemID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(menuItemID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Quantity is the number of units across all lines.
func (c *Cart) Quantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Lines returns a copy.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

func (c *Cart) index(id uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].MenuItemID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Total sums price*quantity of the given lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
