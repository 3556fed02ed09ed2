package storeapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Category is the public category payload.
type Category struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	ProductCount int64     `json:"product_count"`
}

// Post is a published blog post.
type Post struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      string     `json:"content"`
	Excerpt      *string    `json:"excerpt,omitempty"`
	Author       string     `json:"author"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategoryName *string    `json:"category_name,omitempty"`
	Tags         []string   `json:"tags"`
	IsPublished  bool       `json:"is_published"`
	IsFeatured   bool       `json:"is_featured"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// ListParams narrows product and post listings. Zero values are omitted.
type ListParams struct {
	CategoryID *uuid.UUID
	IsFeatured *bool
	Limit      int
	Skip       int
}

func (p ListParams) values() url.Values {
	values := url.Values{}
	if p.CategoryID != nil {
		values.Set("category_id", p.CategoryID.String())
	}
	if p.IsFeatured != nil {
		values.Set("is_featured", strconv.FormatBool(*p.IsFeatured))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Skip > 0 {
		values.Set("skip", strconv.Itoa(p.Skip))
	}
	return values
}

// BrowseResult is one page of the server-side catalog pipeline.
type BrowseResult struct {
	Products    []catalog.Product `json:"products"`
	Total       int               `json:"total"`
	Limit       int               `json:"limit"`
	Skip        int               `json:"skip"`
	Unavailable bool              `json:"unavailable"`
}

// ListProducts returns active products, newest first.
func (c *Client) ListProducts(ctx context.Context, params ListParams) ([]catalog.Product, error) {
	var products []catalog.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: params.values()}, &products)
	return products, err
}

// BrowseProducts runs the filter and sort pipeline on the server.
func (c *Client) BrowseProducts(ctx context.Context, state catalog.FilterState, limit, skip int) (*BrowseResult, error) {
	query := state.Values()
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	var result BrowseResult
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/browse", query: query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SearchProducts(ctx context.Context, q string, limit int) ([]catalog.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var products []catalog.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/products/search", query: query}, &products)
	return products, err
}

func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	var product catalog.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/slug/" + url.PathEscape(slug)}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var list []Category
	err := c.do(ctx, request{method: http.MethodGet, path: "/categories"}, &list)
	return list, err
}

func (c *Client) ListPosts(ctx context.Context, params ListParams) ([]Post, error) {
	var posts []Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/blog/posts", query: params.values()}, &posts)
	return posts, err
}
