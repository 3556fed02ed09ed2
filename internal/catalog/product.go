package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the read-only view of a listing the pipeline filters and sorts.
// JSON names follow the public product payload so remote listings decode
// straight into it.
type Product struct {
	ID             uuid.UUID           `json:"id"`
	Slug           string              `json:"slug"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	CategoryID     uuid.UUID           `json:"category_id"`
	CategoryName   string              `json:"category_name"`
	Price          decimal.Decimal     `json:"price"`
	OriginalPrice  decimal.NullDecimal `json:"original_price"`
	Rating         float64             `json:"rating"`
	ReviewCount    int                 `json:"review_count"`
	InStock        bool                `json:"in_stock"`
	BestSeller     bool                `json:"is_featured"`
	Features       []string            `json:"features"`
	HealthBenefits string              `json:"health_benefits,omitempty"`
	Image          string              `json:"image_base64,omitempty"`
	AffiliateURL   string              `json:"affiliate_url"`
	CreatedAt      time.Time           `json:"created_at"`
}

// OnSale reports whether the listing shows a higher original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice.Valid && p.OriginalPrice.Decimal.GreaterThan(p.Price)
}
