package categories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryDTO is the category payload with its live product count.
type CategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	ImageBase64  *string   `json:"image_base64,omitempty"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// CategoryInput is the full create/replace payload.
type CategoryInput struct {
	Name        string
	Slug        string
	Description *string
	ImageBase64 *string
}

// Service exposes category reads and admin mutations.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	Create(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService wires the category service.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	counts, err := s.repo.ProductCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newCategoryDTO(&rows[i], counts[rows[i].ID]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ProductCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	dto := newCategoryDTO(category, counts[category.ID])
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, input.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &models.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ImageBase64: input.ImageBase64,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	dto := newCategoryDTO(created, 0)
	return &dto, nil
}

// Update replaces the category fields. A rename is copied onto the products
// and posts that carry the category name.
func (s *service) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Slug != category.Slug {
		if err := s.ensureSlugFree(ctx, input.Slug, category.ID); err != nil {
			return nil, err
		}
	}
	renamed := input.Name != category.Name
	category.Name = input.Name
	category.Slug = input.Slug
	category.Description = input.Description
	category.ImageBase64 = input.ImageBase64

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Save(ctx, category); err != nil {
			return err
		}
		if !renamed {
			return nil
		}
		if err := repo.RenameOnProducts(ctx, category.ID, category.Name); err != nil {
			return err
		}
		return repo.RenameOnPosts(ctx, category.ID, category.Name)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	return s.Get(ctx, category.ID)
}

// Delete removes an unused category. Categories still referenced by products
// are refused.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete category with products").
			WithDetails(map[string]any{"product_count": count})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	s.logg.Info(s.logg.WithField(ctx, "category_id", id.String()), "category deleted")
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("category")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return category, nil
}

func (s *service) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category slug")
	}
	if existing.ID != self {
		return pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
	}
	return nil
}

func normalizeInput(input CategoryInput) (CategoryInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	if input.Name == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Slug == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	return input, nil
}

func newCategoryDTO(c *models.Category, count int64) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ImageBase64:  c.ImageBase64,
		ProductCount: count,
		CreatedAt:    c.CreatedAt,
	}
}
