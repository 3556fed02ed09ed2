package models

import (
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is an editorial article. PublishedAt is stamped the first time
// the post is published and kept through later edits.
type BlogPost struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title               string             `gorm:"column:title;not null"`
	Slug                string             `gorm:"column:slug;not null;uniqueIndex"`
	Content             string             `gorm:"column:content;not null"`
	Excerpt             *string            `gorm:"column:excerpt"`
	Author              string             `gorm:"column:author;not null"`
	CategoryID          *uuid.UUID         `gorm:"column:category_id;type:uuid;index"`
	CategoryName        *string            `gorm:"column:category_name"`
	FeaturedImageBase64 *string            `gorm:"column:featured_image_base64"`
	Tags                dbtypes.StringList `gorm:"column:tags;not null"`
	IsPublished         bool               `gorm:"column:is_published;not null"`
	IsFeatured          bool               `gorm:"column:is_featured;not null"`
	MetaTitle           *string            `gorm:"column:meta_title"`
	MetaDescription     *string            `gorm:"column:meta_description"`
	PublishedAt         *time.Time         `gorm:"column:published_at;index"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BlogPost) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Tags == nil {
		b.Tags = dbtypes.StringList{}
	}
	return nil
}
