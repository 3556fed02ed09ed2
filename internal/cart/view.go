package cart

import (
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
)

// View is the cart payload returned to shoppers.
type View struct {
	SessionID string          `json:"session_id"`
	Items     []ItemView      `json:"items"`
	ItemCount int             `json:"item_count"`
	Summary   pricing.Summary `json:"summary"`
}

// ItemView renders a line with its money values fixed to cents.
type ItemView struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	UnitPrice    string    `json:"unit_price"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Quantity     int       `json:"quantity"`
	LineTotal    string    `json:"line_total"`
}

// NewView renders c with its pricing summary.
func NewView(sessionID string, c *Cart, policy pricing.Policy) *View {
	if c == nil {
		c = New()
	}
	lines := c.Lines()
	items := make([]ItemView, 0, len(lines))
	for _, line := range lines {
		items = append(items, ItemView{
			ProductID:    line.ProductID,
			Name:         line.Name,
			Image:        line.Image,
			UnitPrice:    pricing.Format(line.UnitPrice),
			CategoryID:   line.CategoryID,
			CategoryName: line.CategoryName,
			Quantity:     line.Quantity,
			LineTotal:    pricing.Format(line.LineTotal()),
		})
	}
	return &View{
		SessionID: sessionID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Summary:   c.Quote(policy).Summary(),
	}
}
