package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ProductList serves the simple public listing: category and featured
// filters, newest first.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, false)
}

// AdminProductList also returns inactive products.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productList(svc, logg, true)
}

func productList(svc productsvc.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featured, err := validators.ParseQueryBool(r, "is_featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := parsePage(r, 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.List(r.Context(), productsvc.ListProductsInput{
			Filters: productsvc.ListFilters{
				CategoryID:      categoryID,
				IsFeatured:      featured,
				IncludeInactive: includeInactive,
			},
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductBrowse runs the catalog filter and sort pipeline. Malformed filter
// values are ignored rather than rejected so shared links keep working.
func ProductBrowse(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		page, err := parsePage(r, 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result := svc.Browse(r.Context(), productsvc.BrowseInput{
			State:      catalog.ParseFilterState(r.URL.Query()),
			Pagination: page,
		})
		responses.WriteSuccess(w, result)
	}
}

func ProductSearch(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductBestSellers(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		products, err := svc.BestSellers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductGetBySlug(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		product, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createProductRequest struct {
	Slug             string           `json:"slug" validate:"required,max=160"`
	Name             string           `json:"name" validate:"required,max=200"`
	Description      string           `json:"description" validate:"required"`
	ShortDescription *string          `json:"short_description,omitempty"`
	CategoryID       uuid.UUID        `json:"category_id" validate:"required"`
	Price            decimal.Decimal  `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	AffiliateURL     string           `json:"affiliate_url" validate:"required,url"`
	AmazonASIN       *string          `json:"amazon_asin,omitempty" validate:"omitempty,max=20"`
	ImageBase64      *string          `json:"image_base64,omitempty"`
	AdditionalImages []string         `json:"additional_images,omitempty"`
	Features         []string         `json:"features,omitempty" validate:"omitempty,max=50,dive,max=300"`
	HealthBenefits   *string          `json:"health_benefits,omitempty"`
	Rating           float64          `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount      int              `json:"review_count" validate:"gte=0"`
	InStock          *bool            `json:"in_stock,omitempty"`
	IsFeatured       bool             `json:"is_featured"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	if err := validateProductImages(r.ImageBase64, r.AdditionalImages); err != nil {
		return productsvc.CreateProductInput{}, err
	}
	return productsvc.CreateProductInput{
		Slug:             strings.TrimSpace(r.Slug),
		Name:             validators.SanitizeString(r.Name, 200),
		Description:      strings.TrimSpace(r.Description),
		ShortDescription: validators.SanitizeOptional(r.ShortDescription, 500),
		CategoryID:       r.CategoryID,
		Price:            r.Price,
		OriginalPrice:    r.OriginalPrice,
		AffiliateURL:     strings.TrimSpace(r.AffiliateURL),
		AmazonASIN:       validators.SanitizeOptional(r.AmazonASIN, 20),
		ImageBase64:      r.ImageBase64,
		AdditionalImages: r.AdditionalImages,
		Features:         r.Features,
		HealthBenefits:   validators.SanitizeOptional(r.HealthBenefits, 0),
		Rating:           r.Rating,
		ReviewCount:      r.ReviewCount,
		InStock:          boolOr(r.InStock, true),
		IsFeatured:       r.IsFeatured,
		IsActive:         boolOr(r.IsActive, true),
	}, nil
}

type updateProductRequest struct {
	Slug             *string          `json:"slug,omitempty" validate:"omitempty,max=160"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"short_description,omitempty"`
	CategoryID       *uuid.UUID       `json:"category_id,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	AffiliateURL     *string          `json:"affiliate_url,omitempty" validate:"omitempty,url"`
	AmazonASIN       *string          `json:"amazon_asin,omitempty" validate:"omitempty,max=20"`
	ImageBase64      *string          `json:"image_base64,omitempty"`
	AdditionalImages *[]string        `json:"additional_images,omitempty"`
	Features         *[]string        `json:"features,omitempty"`
	HealthBenefits   *string          `json:"health_benefits,omitempty"`
	Rating           *float64         `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount      *int             `json:"review_count,omitempty" validate:"omitempty,gte=0"`
	InStock          *bool            `json:"in_stock,omitempty"`
	IsFeatured       *bool            `json:"is_featured,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	var additional []string
	if r.AdditionalImages != nil {
		additional = *r.AdditionalImages
	}
	if err := validateProductImages(r.ImageBase64, additional); err != nil {
		return productsvc.UpdateProductInput{}, err
	}
	return productsvc.UpdateProductInput{
		Slug:             r.Slug,
		Name:             r.Name,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		CategoryID:       r.CategoryID,
		Price:            r.Price,
		OriginalPrice:    r.OriginalPrice,
		AffiliateURL:     r.AffiliateURL,
		AmazonASIN:       r.AmazonASIN,
		ImageBase64:      r.ImageBase64,
		AdditionalImages: r.AdditionalImages,
		Features:         r.Features,
		HealthBenefits:   r.HealthBenefits,
		Rating:           r.Rating,
		ReviewCount:      r.ReviewCount,
		InStock:          r.InStock,
		IsFeatured:       r.IsFeatured,
		IsActive:         r.IsActive,
	}, nil
}

func validateProductImages(primary *string, additional []string) error {
	if err := validators.ValidateImageBase64("image_base64", primary); err != nil {
		return err
	}
	for i := range additional {
		if err := validators.ValidateImageBase64("additional_images", &additional[i]); err != nil {
			return err
		}
	}
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// parsePage reads limit/skip; a zero limit leaves the default to the service.
func parsePage(r *http.Request, defaultLimit int) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	skip, err := validators.ParseQueryInt(r, "skip", 0, 0, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Skip: skip}, nil
}
