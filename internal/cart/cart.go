// Package cart holds the shopper's cart. Every mutation is validated
// against the product snapshot taken when the line was added and is
// persisted to client storage; the cart never talks to the network.
package cart

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/notice"
	"teakspice-storefront/internal/storage"
)

const (
	MsgOutOfStock      = "This product is out of stock."
	MsgInvalidQuantity = "Quantity must be at least 1."
)

// MsgOnlyAvailable is the notice for a quantity above the stock ceiling.
func MsgOnlyAvailable(n int) string {
	return fmt.Sprintf("Only %d items available in stock.", n)
}

// Item is a product snapshot plus a quantity.
type Item struct {
	ProductID     primitive.ObjectID `json:"productId"`
	Name          string             `json:"name"`
	Price         float64            `json:"price"`
	Image         string             `json:"image,omitempty"`
	StockQuantity int                `json:"stockQuantity"`
	Quantity      int                `json:"quantity"`
}

func (it Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	mu       sync.Mutex
	items    []Item
	store    storage.Storage
	notifier notice.Notifier
	logger   *slog.Logger
}

// New restores the cart persisted in store, if any.
func New(store storage.Storage, notifier notice.Notifier, logger *slog.Logger) (*Cart, error) {
	c := &Cart{store: store, notifier: notifier, logger: logger}
	if _, err := store.Load(storage.KeyCart, &c.items); err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	return c, nil
}

func (c *Cart) indexOf(id primitive.ObjectID) int {
	for i := range c.items {
		if c.items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Add merges qty of product into the cart. It reports false, with a notice,
// when the product is not purchasable or the merged quantity would exceed
// its stock.
func (c *Cart) Add(p models.Product, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty < 1 {
		c.warn(MsgInvalidQuantity)
		return false
	}
	if !p.Purchasable() {
		c.warn(MsgOutOfStock)
		return false
	}

	i := c.indexOf(p.ID)
	current := 0
	if i >= 0 {
		current = c.items[i].Quantity
	}
	if current+qty > p.StockQuantity {
		c.warn(MsgOnlyAvailable(p.StockQuantity))
		return false
	}

	line := Item{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Image:         p.MainImage(),
		StockQuantity: p.StockQuantity,
		Quantity:      current + qty,
	}
	if i >= 0 {
		c.items[i] = line
	} else {
		c.items = append(c.items, line)
	}
	c.persist()
	c.notifier.Notify(notice.Notice{Kind: notice.Success, Message: p.Name + " added to cart."})
	return true
}

// Update sets the line's quantity. qty <= 0 removes the line; a quantity
// above the snapshot's stock is rejected and the line keeps its quantity.
func (c *Cart) Update(id primitive.ObjectID, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.removeAt(i)
		return true
	}
	if qty > c.items[i].StockQuantity {
		c.warn(MsgOnlyAvailable(c.items[i].StockQuantity))
		return false
	}
	c.items[i].Quantity = qty
	c.persist()
	return true
}

func (c *Cart) Remove(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist()
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.persist()
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

func (c *Cart) Quantity(id primitive.ObjectID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Subtotal())
	}
	return sum.Round(2)
}

// OrderItems freezes the cart into order lines.
func (c *Cart) OrderItems() []models.OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.OrderItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
		})
	}
	return out
}

func (c *Cart) warn(msg string) {
	c.notifier.Notify(notice.Notice{Kind: notice.Error, Message: msg})
}

// persist must be called with c.mu held. A storage failure keeps the
// in-memory cart and is only logged.
func (c *Cart) persist() {
	if err := c.store.Save(storage.KeyCart, c.items); err != nil {
		c.logger.Warn("persist cart", slog.String("error", err.Error()))
	}
}
