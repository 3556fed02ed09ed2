package product

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the product payload returned to storefront and admin clients.
type ProductDTO struct {
	ID               uuid.UUID           `json:"id"`
	Slug             string              `json:"slug"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	ShortDescription *string             `json:"short_description,omitempty"`
	CategoryID       uuid.UUID           `json:"category_id"`
	CategoryName     string              `json:"category_name"`
	Price            decimal.Decimal     `json:"price"`
	OriginalPrice    decimal.NullDecimal `json:"original_price"`
	AffiliateURL     string              `json:"affiliate_url"`
	AmazonASIN       *string             `json:"amazon_asin,omitempty"`
	ImageBase64      *string             `json:"image_base64,omitempty"`
	AdditionalImages []string            `json:"additional_images"`
	Features         []string            `json:"features"`
	HealthBenefits   *string             `json:"health_benefits,omitempty"`
	Rating           float64             `json:"rating"`
	ReviewCount      int                 `json:"review_count"`
	InStock          bool                `json:"in_stock"`
	IsFeatured       bool                `json:"is_featured"`
	IsActive         bool                `json:"is_active"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:               p.ID,
		Slug:             p.Slug,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		CategoryID:       p.CategoryID,
		CategoryName:     p.CategoryName,
		Price:            p.Price,
		OriginalPrice:    p.OriginalPrice,
		AffiliateURL:     p.AffiliateURL,
		AmazonASIN:       p.AmazonASIN,
		ImageBase64:      p.ImageBase64,
		AdditionalImages: append([]string{}, p.AdditionalImages...),
		Features:         append([]string{}, p.Features...),
		HealthBenefits:   p.HealthBenefits,
		Rating:           p.Rating,
		ReviewCount:      p.ReviewCount,
		InStock:          p.InStock,
		IsFeatured:       p.IsFeatured,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models.
func NewProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, NewProductDTO(&products[i]))
	}
	return out
}

// toCatalogProduct projects a model into the browse pipeline view.
func toCatalogProduct(p *models.Product) catalog.Product {
	return catalog.Product{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		CategoryName:   p.CategoryName,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		InStock:        p.InStock,
		BestSeller:     p.IsFeatured,
		Features:       append([]string{}, p.Features...),
		HealthBenefits: deref(p.HealthBenefits),
		Image:          deref(p.ImageBase64),
		AffiliateURL:   p.AffiliateURL,
		CreatedAt:      p.CreatedAt,
	}
}

func toCartEntry(p *models.Product) *cart.CatalogEntry {
	return &cart.CatalogEntry{
		Product: cart.Product{
			ID:           p.ID,
			Name:         p.Name,
			Image:        deref(p.ImageBase64),
			UnitPrice:    p.Price,
			CategoryID:   p.CategoryID,
			CategoryName: p.CategoryName,
		},
		IsActive: p.IsActive,
		InStock:  p.InStock,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
