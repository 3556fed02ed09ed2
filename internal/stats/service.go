package stats

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// Dashboard is the admin overview of catalog and content volume.
type Dashboard struct {
	TotalProducts    int64 `json:"total_products"`
	TotalCategories  int64 `json:"total_categories"`
	TotalBlogPosts   int64 `json:"total_blog_posts"`
	FeaturedProducts int64 `json:"featured_products"`
}

// Service computes dashboard counters.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	db *gorm.DB
}

// NewService binds the stats service to GORM.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: db}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	counts := []struct {
		name  string
		dst   *int64
		query func(*gorm.DB) *gorm.DB
	}{
		{"products", &out.TotalProducts, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Product{}).Where("is_active = ?", true)
		}},
		{"categories", &out.TotalCategories, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Category{})
		}},
		{"blog posts", &out.TotalBlogPosts, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.BlogPost{}).Where("is_published = ?", true)
		}},
		{"featured products", &out.FeaturedProducts, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Product{}).Where("is_active = ? AND is_featured = ?", true, true)
		}},
	}
	for _, c := range counts {
		if err := c.query(s.db.WithContext(ctx)).Count(c.dst).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count "+c.name)
		}
	}
	return &out, nil
}
