package storefront

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one cart entry. Quantity 0 in a server response means 1.
type Line struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Quantity int     `json:"quantity"`
}

func (l Line) key() lineKey {
	return lineKey{name: l.Name, price: l.Price, imageURL: l.ImageURL}
}

func (l Line) quantity() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}

type lineKey struct {
	name     string
	price    float64
	imageURL string
}

// Cart holds the lines a shopper intends to buy. It is safe for concurrent use.
// Lines with the same name, price and image are merged.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add appends item, or raises the quantity of an identical line.
func (c *Cart) Add(item Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item.Quantity = item.quantity()
	if i := c.index(item); i >= 0 {
		c.lines[i].Quantity += item.Quantity
		return
	}
	c.lines = append(c.lines, item)
}

// UpdateQuantity sets the quantity of item's line. A quantity of zero or less
// removes the line. It reports whether the line was present.
func (c *Cart) UpdateQuantity(item Line, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(item)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return true
	}
	c.lines[i].Quantity = quantity
	return true
}

// Remove drops item's line.
func (c *Cart) Remove(item Line) bool {
	return c.UpdateQuantity(item, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// removeOrdered takes the quantities of ordered off the cart. Lines added or raised
// after ordered was read stay.
func (c *Cart) removeOrdered(ordered []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range ordered {
		i := c.index(line)
		if i < 0 {
			continue
		}
		c.lines[i].Quantity -= line.quantity()
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
	}
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Subtotal is sum(price * quantity).
func (c *Cart) Subtotal() float64 {
	return subtotal(c.Lines()).InexactFloat64()
}

// Total is the subtotal plus the shipping fee.
func (c *Cart) Total(shippingFee float64) float64 {
	return total(c.Lines(), shippingFee)
}

func total(lines []Line, shippingFee float64) float64 {
	return subtotal(lines).Add(decimal.NewFromFloat(shippingFee)).Round(2).InexactFloat64()
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.quantity()))))
	}
	return sum
}

// caller must hold c.mu
func (c *Cart) index(item Line) int {
	for i, line := range c.lines {
		if line.key() == item.key() {
			return i
		}
	}
	return -1
}
