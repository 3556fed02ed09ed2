package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const bestSellerLimit = 20

// Service exposes product catalog and admin operations.
type Service interface {
	List(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	Browse(ctx context.Context, input BrowseInput) catalog.Result
	Search(ctx context.Context, q string, limit int) ([]ProductDTO, error)
	BestSellers(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CatalogProducts(ctx context.Context) ([]catalog.Product, error)
	CartProduct(ctx context.Context, id uuid.UUID) (*cart.CatalogEntry, error)
}

type categoryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type derivationRecorder interface {
	ObserveDerivation(sortKey string, visible int)
	IncSourceFailure()
}

type service struct {
	repo       *Repository
	categories categoryReader
	browser    *catalog.Browser
	cfg        config.CatalogConfig
	logg       *logger.Logger
	loads      singleflight.Group
}

// NewService constructs the product service. The service is also the
// catalog source for its own browser.
func NewService(repo *Repository, categories categoryReader, cfg config.CatalogConfig, metrics derivationRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category reader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	svc := &service{repo: repo, categories: categories, cfg: cfg, logg: logg}
	browser, err := catalog.NewBrowser(svc, metrics, logg, cfg.MaxPageSize)
	if err != nil {
		return nil, err
	}
	svc.browser = browser
	return svc, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	page := input.Pagination
	if page.Limit <= 0 {
		page.Limit = s.cfg.BrowseLimit
	}
	rows, err := s.repo.List(ctx, input.Filters, page.Normalize(s.cfg.MaxPageSize))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return NewProductDTOs(rows), nil
}

func (s *service) Browse(ctx context.Context, input BrowseInput) catalog.Result {
	page := input.Pagination
	if page.Limit <= 0 {
		page.Limit = s.cfg.BrowseLimit
	}
	return s.browser.Browse(ctx, input.State, page)
}

func (s *service) Search(ctx context.Context, q string, limit int) ([]ProductDTO, error) {
	if strings.TrimSpace(q) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q is required")
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	rows, err := s.repo.Search(ctx, q, pagination.NormalizeLimit(limit, s.cfg.MaxPageSize))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return NewProductDTOs(rows), nil
}

func (s *service) BestSellers(ctx context.Context) ([]ProductDTO, error) {
	featured := true
	rows, err := s.repo.List(ctx, ListFilters{IsFeatured: &featured}, pagination.Params{Limit: bestSellerLimit})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list best sellers")
	}
	return NewProductDTOs(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.NotFound("product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.NotFound("product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	slug := normalizeSlug(input.Slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	if err := validatePrices(input.Price, input.OriginalPrice); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}
	category, err := s.category(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Slug:             slug,
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		CategoryID:       category.ID,
		CategoryName:     category.Name,
		Price:            input.Price,
		OriginalPrice:    nullDecimal(input.OriginalPrice),
		AffiliateURL:     strings.TrimSpace(input.AffiliateURL),
		AmazonASIN:       input.AmazonASIN,
		ImageBase64:      input.ImageBase64,
		AdditionalImages: append([]string{}, input.AdditionalImages...),
		Features:         append([]string{}, input.Features...),
		HealthBenefits:   input.HealthBenefits,
		Rating:           input.Rating,
		ReviewCount:      input.ReviewCount,
		InStock:          input.InStock,
		IsFeatured:       input.IsFeatured,
		IsActive:         input.IsActive,
	}
	product.Features = product.Features.Clean()
	product.AdditionalImages = product.AdditionalImages.Clean()

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"product_id": created.ID.String(), "slug": created.Slug}), "product created")
	dto := NewProductDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Slug != nil {
		slug := normalizeSlug(*input.Slug)
		if slug == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be empty")
		}
		if slug != product.Slug {
			if err := s.ensureSlugFree(ctx, slug, product.ID); err != nil {
				return nil, err
			}
		}
		product.Slug = slug
	}
	if input.CategoryID != nil {
		category, err := s.category(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.CategoryName = category.Name
	}
	if err := applyUpdateToProduct(product, input); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := NewProductDTO(saved)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.NotFound("product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product deleted")
	return nil
}

// CatalogProducts loads every active product for the browse pipeline.
// Concurrent callers share one database round trip, which runs detached from
// the cancellation of whichever caller started it.
func (s *service) CatalogProducts(ctx context.Context) ([]catalog.Product, error) {
	loadCtx := context.WithoutCancel(ctx)
	value, err, _ := s.loads.Do("catalog", func() (any, error) {
		rows, err := s.repo.ListActive(loadCtx)
		if err != nil {
			return nil, err
		}
		out := make([]catalog.Product, 0, len(rows))
		for i := range rows {
			out = append(out, toCatalogProduct(&rows[i]))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]catalog.Product), nil
}

// CartProduct resolves a product for the cart service.
func (s *service) CartProduct(ctx context.Context, id uuid.UUID) (*cart.CatalogEntry, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCartEntry(product), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product slug")
	}
	if existing.ID != self {
		return pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
	}
	return nil
}

func (s *service) category(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return category, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) error {
	if input.Price != nil || input.OriginalPrice != nil {
		price := product.Price
		if input.Price != nil {
			price = *input.Price
		}
		var original *decimal.Decimal
		if input.OriginalPrice != nil {
			original = input.OriginalPrice
		} else if product.OriginalPrice.Valid {
			original = &product.OriginalPrice.Decimal
		}
		if err := validatePrices(price, original); err != nil {
			return err
		}
		product.Price = price
		product.OriginalPrice = nullDecimal(original)
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.ShortDescription != nil {
		product.ShortDescription = input.ShortDescription
	}
	if input.AffiliateURL != nil {
		product.AffiliateURL = strings.TrimSpace(*input.AffiliateURL)
	}
	if input.AmazonASIN != nil {
		product.AmazonASIN = input.AmazonASIN
	}
	if input.ImageBase64 != nil {
		product.ImageBase64 = input.ImageBase64
	}
	if input.AdditionalImages != nil {
		product.AdditionalImages = append(product.AdditionalImages[:0:0], *input.AdditionalImages...)
		product.AdditionalImages = product.AdditionalImages.Clean()
	}
	if input.Features != nil {
		product.Features = append(product.Features[:0:0], *input.Features...)
		product.Features = product.Features.Clean()
	}
	if input.HealthBenefits != nil {
		product.HealthBenefits = input.HealthBenefits
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.ReviewCount != nil {
		product.ReviewCount = *input.ReviewCount
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return nil
}

func validatePrices(price decimal.Decimal, original *decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if original != nil && original.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "original_price must not be negative")
	}
	return nil
}

func nullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*value)
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
