package product

import (
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilters are the simple listing knobs of the public products endpoint.
type ListFilters struct {
	CategoryID *uuid.UUID
	IsFeatured *bool
	// IncludeInactive is only honoured for admin listings.
	IncludeInactive bool
}

// ListProductsInput captures a filtered, paginated listing request.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// BrowseInput runs the catalog pipeline with a page window.
type BrowseInput struct {
	State      catalog.FilterState
	Pagination pagination.Params
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Slug             string
	Name             string
	Description      string
	ShortDescription *string
	CategoryID       uuid.UUID
	Price            decimal.Decimal
	OriginalPrice    *decimal.Decimal
	AffiliateURL     string
	AmazonASIN       *string
	ImageBase64      *string
	AdditionalImages []string
	Features         []string
	HealthBenefits   *string
	Rating           float64
	ReviewCount      int
	InStock          bool
	IsFeatured       bool
	IsActive         bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Slug             *string
	Name             *string
	Description      *string
	ShortDescription *string
	CategoryID       *uuid.UUID
	Price            *decimal.Decimal
	OriginalPrice    *decimal.Decimal
	AffiliateURL     *string
	AmazonASIN       *string
	ImageBase64      *string
	AdditionalImages *[]string
	Features         *[]string
	HealthBenefits   *string
	Rating           *float64
	ReviewCount      *int
	InStock          *bool
	IsFeatured       *bool
	IsActive         *bool
}
