package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/health"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const defaultHealthListLimit = 10

type healthArticleRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Excerpt     string     `json:"excerpt" validate:"max=500"`
	Content     string     `json:"content" validate:"required"`
	Image       string     `json:"image" validate:"max=2048"`
	ReadTime    string     `json:"read_time" validate:"max=40"`
	Category    string     `json:"category" validate:"required,max=80"`
	Featured    bool       `json:"featured"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type testimonialRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Avatar  string `json:"avatar" validate:"max=2048"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Text    string `json:"text" validate:"required,max=2000"`
	PetName string `json:"pet_name" validate:"max=120"`
}

type verifyTestimonialRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

func healthUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "health service unavailable"))
}

// HealthArticleList filters by category substring and featured_only.
func HealthArticleList(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		featured, err := validators.ParseQueryBool(r, "featured_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := parsePage(r, defaultHealthListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		articles, err := svc.ListArticles(r.Context(), health.ListArticlesInput{
			Filters: health.ArticleFilters{
				Category:     r.URL.Query().Get("category"),
				FeaturedOnly: featured != nil && *featured,
			},
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, articles)
	}
}

func HealthArticleGet(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "articleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		article, err := svc.GetArticle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}

func HealthArticlesByCategory(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		articles, err := svc.ArticlesByCategory(r.Context(), chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, articles)
	}
}

func HealthCategories(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func HealthBenefits(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, map[string]any{"benefits": svc.Benefits()})
	}
}

// HealthTestimonialList shows verified testimonials unless verified_only=false.
func HealthTestimonialList(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		verifiedOnly, err := validators.ParseQueryBool(r, "verified_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultHealthListLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListTestimonials(r.Context(), verifiedOnly == nil || *verifiedOnly, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func HealthTestimonialSubmit(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		var payload testimonialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		testimonial, err := svc.SubmitTestimonial(r.Context(), health.TestimonialInput{
			Name:    validators.SanitizeString(payload.Name, 120),
			Avatar:  strings.TrimSpace(payload.Avatar),
			Rating:  payload.Rating,
			Text:    validators.SanitizeString(payload.Text, 2000),
			PetName: validators.SanitizeString(payload.PetName, 120),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, testimonial)
	}
}

func AdminHealthArticleCreate(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		var payload healthArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := health.ArticleInput{
			Title:    validators.SanitizeString(payload.Title, 200),
			Excerpt:  validators.SanitizeString(payload.Excerpt, 500),
			Content:  payload.Content,
			Image:    strings.TrimSpace(payload.Image),
			ReadTime: validators.SanitizeString(payload.ReadTime, 40),
			Category: validators.SanitizeString(payload.Category, 80),
			Featured: payload.Featured,
		}
		if payload.PublishedAt != nil {
			input.PublishedAt = *payload.PublishedAt
		}
		article, err := svc.CreateArticle(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, article)
	}
}

func AdminTestimonialVerify(svc health.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			healthUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "testimonialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload verifyTestimonialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.VerifyTestimonial(r.Context(), id, *payload.Verified); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "testimonial updated")
	}
}
