package models

import (
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is an affiliate listing. CategoryName is copied from the category
// on write so listings never need a join.
type Product struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Slug             string              `gorm:"column:slug;not null;uniqueIndex"`
	Name             string              `gorm:"column:name;not null"`
	Description      string              `gorm:"column:description;not null"`
	ShortDescription *string             `gorm:"column:short_description"`
	CategoryID       uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	CategoryName     string              `gorm:"column:category_name;not null"`
	Price            decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice    decimal.NullDecimal `gorm:"column:original_price;type:numeric(12,2)"`
	AffiliateURL     string              `gorm:"column:affiliate_url;not null"`
	AmazonASIN       *string             `gorm:"column:amazon_asin"`
	ImageBase64      *string             `gorm:"column:image_base64"`
	AdditionalImages dbtypes.StringList  `gorm:"column:additional_images;not null"`
	Features         dbtypes.StringList  `gorm:"column:features;not null"`
	HealthBenefits   *string             `gorm:"column:health_benefits"`
	Rating           float64             `gorm:"column:rating;not null;default:0"`
	ReviewCount      int                 `gorm:"column:review_count;not null;default:0"`
	InStock          bool                `gorm:"column:in_stock;not null"`
	IsFeatured       bool                `gorm:"column:is_featured;not null"`
	IsActive         bool                `gorm:"column:is_active;not null"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AdditionalImages == nil {
		p.AdditionalImages = dbtypes.StringList{}
	}
	if p.Features == nil {
		p.Features = dbtypes.StringList{}
	}
	return nil
}
