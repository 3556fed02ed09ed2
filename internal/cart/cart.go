package cart

import (
	"encoding/json"

	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the snapshot of a catalog product taken when it is added to a cart.
type Product struct {
	ID           uuid.UUID
	Name         string
	Image        string
	UnitPrice    decimal.Decimal
	CategoryID   uuid.UUID
	CategoryName string
}

// LineItem is one distinct product in a cart. Display fields are copied at
// insertion time and are not refreshed when the product later changes.
type LineItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Image        string          `json:"image,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int             `json:"quantity"`
}

// LineTotal is unit price times quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds line items in insertion order, at most one per product, each
// with a quantity of at least one. The zero value is an empty cart.
type Cart struct {
	items []LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// MaxLineQuantity caps the quantity of a single line.
const MaxLineQuantity = 999

// AddToCart increments the quantity of an existing line for the product or
// appends a new line. Quantities below one are treated as one and the line
// saturates at MaxLineQuantity.
func (c *Cart) AddToCart(p Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if idx := c.index(p.ID); idx >= 0 {
		c.items[idx].Quantity = addQuantity(c.items[idx].Quantity, quantity)
		return
	}
	quantity = min(quantity, MaxLineQuantity)
	c.items = append(c.items, LineItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Image:        p.Image,
		UnitPrice:    p.UnitPrice,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Quantity:     quantity,
	})
}

// Add adds a single unit of p.
func (c *Cart) Add(p Product) {
	c.AddToCart(p, 1)
}

// UpdateQuantity sets the absolute quantity of a line, capped at
// MaxLineQuantity. A quantity of zero or less removes the line; an unknown
// product id is ignored.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(productID)
		return
	}
	if idx := c.index(productID); idx >= 0 {
		c.items[idx].Quantity = min(quantity, MaxLineQuantity)
	}
}

// addQuantity sums two positive quantities without exceeding MaxLineQuantity.
func addQuantity(current, delta int) int {
	if delta >= MaxLineQuantity-current {
		return MaxLineQuantity
	}
	return current + delta
}

// RemoveFromCart deletes the line for productID when present.
func (c *Cart) RemoveFromCart(productID uuid.UUID) {
	idx := c.index(productID)
	if idx < 0 {
		return
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
}

// ClearCart empties the cart.
func (c *Cart) ClearCart() {
	c.items = nil
}

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Total is the exact subtotal of all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Quote derives shipping, tax and grand total for the current subtotal.
func (c *Cart) Quote(policy pricing.Policy) pricing.Quote {
	return policy.Quote(c.Total())
}

// Lines returns a copy of the line items in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the line for productID.
func (c *Cart) Find(productID uuid.UUID) (LineItem, bool) {
	if idx := c.index(productID); idx >= 0 {
		return c.items[idx], true
	}
	return LineItem{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) index(productID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

type wireCart struct {
	Items []LineItem `json:"items"`
}

// MarshalJSON encodes the cart as {"items":[...]}.
func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(wireCart{Items: items})
}

// UnmarshalJSON decodes a stored cart, dropping non-positive quantities,
// capping oversized ones and merging duplicate product lines so the decoded
// value keeps the cart rules.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var wire wireCart
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.items = nil
	for _, item := range wire.Items {
		if item.Quantity < 1 {
			continue
		}
		if idx := c.index(item.ProductID); idx >= 0 {
			c.items[idx].Quantity = addQuantity(c.items[idx].Quantity, item.Quantity)
			continue
		}
		item.Quantity = min(item.Quantity, MaxLineQuantity)
		c.items = append(c.items, item)
	}
	return nil
}
