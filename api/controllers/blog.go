package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/blog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type blogPostRequest struct {
	Title               string     `json:"title" validate:"required,max=200"`
	Slug                string     `json:"slug" validate:"required,max=160"`
	Content             string     `json:"content" validate:"required"`
	Excerpt             *string    `json:"excerpt,omitempty"`
	Author              string     `json:"author" validate:"required,max=120"`
	CategoryID          *uuid.UUID `json:"category_id,omitempty"`
	FeaturedImageBase64 *string    `json:"featured_image_base64,omitempty"`
	Tags                []string   `json:"tags,omitempty" validate:"omitempty,max=30,dive,max=60"`
	IsPublished         bool       `json:"is_published"`
	IsFeatured          bool       `json:"is_featured"`
	MetaTitle           *string    `json:"meta_title,omitempty" validate:"omitempty,max=200"`
	MetaDescription     *string    `json:"meta_description,omitempty" validate:"omitempty,max=500"`
}

func (r blogPostRequest) toInput() (blog.PostInput, error) {
	if err := validators.ValidateImageBase64("featured_image_base64", r.FeaturedImageBase64); err != nil {
		return blog.PostInput{}, err
	}
	return blog.PostInput{
		Title:               validators.SanitizeString(r.Title, 200),
		Slug:                strings.TrimSpace(r.Slug),
		Content:             r.Content,
		Excerpt:             validators.SanitizeOptional(r.Excerpt, 0),
		Author:              validators.SanitizeString(r.Author, 120),
		CategoryID:          r.CategoryID,
		FeaturedImageBase64: r.FeaturedImageBase64,
		Tags:                r.Tags,
		IsPublished:         r.IsPublished,
		IsFeatured:          r.IsFeatured,
		MetaTitle:           validators.SanitizeOptional(r.MetaTitle, 200),
		MetaDescription:     validators.SanitizeOptional(r.MetaDescription, 500),
	}, nil
}

// BlogList lists published posts.
func BlogList(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return blogList(svc, logg, false)
}

// AdminBlogList lists drafts alongside published posts.
func AdminBlogList(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return blogList(svc, logg, true)
}

func blogList(svc blog.Service, logg *logger.Logger, includeUnpublished bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
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
		posts, err := svc.List(r.Context(), blog.ListInput{
			Filters: blog.ListFilters{
				CategoryID:         categoryID,
				IsFeatured:         featured,
				IncludeUnpublished: includeUnpublished,
			},
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, posts)
	}
}

func BlogGetBySlug(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}
		post, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// BlogGet returns a published post by id.
func BlogGet(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func AdminBlogCreate(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}
		var payload blogPostRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

func AdminBlogUpdate(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload blogPostRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func AdminBlogDelete(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "postId")
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
