package health

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArticleFilters narrow article listings. Category matches as a
// case-insensitive substring.
type ArticleFilters struct {
	Category     string
	FeaturedOnly bool
}

// CategoryCount is one row of the article category breakdown.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Repository persists health articles and testimonials.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to GORM.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateArticle(ctx context.Context, article *models.HealthArticle) (*models.HealthArticle, error) {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

func (r *Repository) FindArticle(ctx context.Context, id uuid.UUID) (*models.HealthArticle, error) {
	var article models.HealthArticle
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// ListArticles returns the newest articles first.
func (r *Repository) ListArticles(ctx context.Context, filters ArticleFilters, page pagination.Params) ([]models.HealthArticle, error) {
	query := r.db.WithContext(ctx).Model(&models.HealthArticle{})
	if category := strings.ToLower(strings.TrimSpace(filters.Category)); category != "" {
		query = query.Where("LOWER(category) LIKE ? ESCAPE '\\'", "%"+escapeLike(category)+"%")
	}
	if filters.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	var rows []models.HealthArticle
	err := query.
		Order("published_at DESC").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CategoryCounts groups articles by category, largest first. Blank
// categories are left out.
func (r *Repository) CategoryCounts(ctx context.Context, limit int) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.HealthArticle{}).
		Select("category AS name, COUNT(*) AS count").
		Where("TRIM(category) <> ''").
		Group("category").
		Order("count DESC").
		Order("name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CreateTestimonial(ctx context.Context, testimonial *models.Testimonial) (*models.Testimonial, error) {
	if err := r.db.WithContext(ctx).Create(testimonial).Error; err != nil {
		return nil, err
	}
	return testimonial, nil
}

// ListTestimonials returns the newest testimonials first.
func (r *Repository) ListTestimonials(ctx context.Context, verifiedOnly bool, limit int) ([]models.Testimonial, error) {
	query := r.db.WithContext(ctx).Model(&models.Testimonial{})
	if verifiedOnly {
		query = query.Where("verified = ?", true)
	}
	var rows []models.Testimonial
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetVerified flips the verified flag and reports whether the row exists.
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Testimonial{}).
		Where("id = ?", id).
		Update("verified", verified)
	return res.RowsAffected > 0, res.Error
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
