package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
)

const defaultListLimit = 20

// PostDTO is the blog post payload.
type PostDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Slug                string     `json:"slug"`
	Content             string     `json:"content"`
	Excerpt             *string    `json:"excerpt,omitempty"`
	Author              string     `json:"author"`
	CategoryID          *uuid.UUID `json:"category_id,omitempty"`
	CategoryName        *string    `json:"category_name,omitempty"`
	FeaturedImageBase64 *string    `json:"featured_image_base64,omitempty"`
	Tags                []string   `json:"tags"`
	IsPublished         bool       `json:"is_published"`
	IsFeatured          bool       `json:"is_featured"`
	MetaTitle           *string    `json:"meta_title,omitempty"`
	MetaDescription     *string    `json:"meta_description,omitempty"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PostInput is the full create/replace payload.
type PostInput struct {
	Title               string
	Slug                string
	Content             string
	Excerpt             *string
	Author              string
	CategoryID          *uuid.UUID
	FeaturedImageBase64 *string
	Tags                []string
	IsPublished         bool
	IsFeatured          bool
	MetaTitle           *string
	MetaDescription     *string
}

// ListInput is a filtered, paginated listing request.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// Service exposes blog reads and admin mutations.
type Service interface {
	List(ctx context.Context, input ListInput) ([]PostDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PostDTO, error)
	GetBySlug(ctx context.Context, slug string) (*PostDTO, error)
	Create(ctx context.Context, input PostInput) (*PostDTO, error)
	Update(ctx context.Context, id uuid.UUID, input PostInput) (*PostDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo       *Repository
	categories categoryReader
	logg       *logger.Logger
	now        func() time.Time
}

// NewService wires the blog service.
func NewService(repo *Repository, categories categoryReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("blog repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category reader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, categories: categories, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]PostDTO, error) {
	page := input.Pagination
	if page.Limit <= 0 {
		page.Limit = defaultListLimit
	}
	rows, err := s.repo.List(ctx, input.Filters, page.Normalize(pagination.MaxLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list blog posts")
	}
	out := make([]PostDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newPostDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, pkgerrors.NotFound("blog post")
	}
	dto := newPostDTO(post)
	return &dto, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*PostDTO, error) {
	post, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("blog post")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load blog post")
	}
	if !post.IsPublished {
		return nil, pkgerrors.NotFound("blog post")
	}
	dto := newPostDTO(post)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input PostInput) (*PostDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, input.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	post := &models.BlogPost{}
	if err := s.apply(ctx, post, input); err != nil {
		return nil, err
	}
	if post.IsPublished {
		now := s.now().UTC()
		post.PublishedAt = &now
	}
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "blog post slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create blog post")
	}
	dto := newPostDTO(created)
	return &dto, nil
}

// Update replaces the post content. PublishedAt is stamped on the first
// publish and kept afterwards, including when the post is unpublished.
func (s *service) Update(ctx context.Context, id uuid.UUID, input PostInput) (*PostDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Slug != post.Slug {
		if err := s.ensureSlugFree(ctx, input.Slug, post.ID); err != nil {
			return nil, err
		}
	}
	if err := s.apply(ctx, post, input); err != nil {
		return nil, err
	}
	if post.IsPublished && post.PublishedAt == nil {
		now := s.now().UTC()
		post.PublishedAt = &now
	}
	saved, err := s.repo.Save(ctx, post)
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "blog post slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update blog post")
	}
	dto := newPostDTO(saved)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete blog post")
	}
	if !deleted {
		return pkgerrors.NotFound("blog post")
	}
	return nil
}

// apply copies input onto post. An unknown category id is kept without a
// category name.
func (s *service) apply(ctx context.Context, post *models.BlogPost, input PostInput) error {
	post.CategoryID = input.CategoryID
	post.CategoryName = nil
	if input.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *input.CategoryID)
		switch {
		case err == nil:
			name := category.Name
			post.CategoryName = &name
		case !db.IsNotFound(err):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
	}
	post.Title = input.Title
	post.Slug = input.Slug
	post.Content = input.Content
	post.Excerpt = input.Excerpt
	post.Author = input.Author
	post.FeaturedImageBase64 = input.FeaturedImageBase64
	post.Tags = append(post.Tags[:0:0], input.Tags...)
	post.Tags = post.Tags.Clean()
	post.IsPublished = input.IsPublished
	post.IsFeatured = input.IsFeatured
	post.MetaTitle = input.MetaTitle
	post.MetaDescription = input.MetaDescription
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("blog post")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load blog post")
	}
	return post, nil
}

func (s *service) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check blog post slug")
	}
	if existing.ID != self {
		return pkgerrors.New(pkgerrors.CodeConflict, "blog post slug already exists")
	}
	return nil
}

func normalizeInput(input PostInput) (PostInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Author = strings.TrimSpace(input.Author)
	switch {
	case input.Title == "":
		return input, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case input.Slug == "":
		return input, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	case strings.TrimSpace(input.Content) == "":
		return input, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	case input.Author == "":
		return input, pkgerrors.New(pkgerrors.CodeValidation, "author is required")
	}
	return input, nil
}

func newPostDTO(p *models.BlogPost) PostDTO {
	return PostDTO{
		ID:                  p.ID,
		Title:               p.Title,
		Slug:                p.Slug,
		Content:             p.Content,
		Excerpt:             p.Excerpt,
		Author:              p.Author,
		CategoryID:          p.CategoryID,
		CategoryName:        p.CategoryName,
		FeaturedImageBase64: p.FeaturedImageBase64,
		Tags:                append([]string{}, p.Tags...),
		IsPublished:         p.IsPublished,
		IsFeatured:          p.IsFeatured,
		MetaTitle:           p.MetaTitle,
		MetaDescription:     p.MetaDescription,
		PublishedAt:         p.PublishedAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
