package storeapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Admin is the authenticated console user.
type Admin struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResult carries the bearer token for admin calls.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       Admin     `json:"admin"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalProducts    int64 `json:"total_products"`
	TotalCategories  int64 `json:"total_categories"`
	TotalBlogPosts   int64 `json:"total_blog_posts"`
	FeaturedProducts int64 `json:"featured_products"`
}

// ProductInput creates a product.
type ProductInput struct {
	Slug             string           `json:"slug"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ShortDescription *string          `json:"short_description,omitempty"`
	CategoryID       uuid.UUID        `json:"category_id"`
	Price            decimal.Decimal  `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	AffiliateURL     string           `json:"affiliate_url"`
	AmazonASIN       *string          `json:"amazon_asin,omitempty"`
	ImageBase64      *string          `json:"image_base64,omitempty"`
	Features         []string         `json:"features,omitempty"`
	HealthBenefits   *string          `json:"health_benefits,omitempty"`
	Rating           float64          `json:"rating"`
	ReviewCount      int              `json:"review_count"`
	InStock          *bool            `json:"in_stock,omitempty"`
	IsFeatured       bool             `json:"is_featured"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

// ProductPatch updates only the fields that are set.
type ProductPatch struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	InStock       *bool            `json:"in_stock,omitempty"`
	IsFeatured    *bool            `json:"is_featured,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}
	var result LoginResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/login",
		body:   map[string]string{"username": username, "password": password},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Me(ctx context.Context, token string) (*Admin, error) {
	var admin Admin
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/me", token: token}, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// Logout revokes the server session behind token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/admin/logout", token: token}, nil)
}

func (c *Client) Stats(ctx context.Context, token string) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats", token: token}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdminListProducts includes inactive products.
func (c *Client) AdminListProducts(ctx context.Context, token string, params ListParams) ([]catalog.Product, error) {
	var products []catalog.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/products", query: params.values(), token: token}, &products)
	return products, err
}

func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (*catalog.Product, error) {
	var product catalog.Product
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/products", token: token, body: input}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id uuid.UUID, patch ProductPatch) (*catalog.Product, error) {
	var product catalog.Product
	if err := c.do(ctx, request{method: http.MethodPut, path: pathID("/admin/products", id), token: token, body: patch}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathID("/admin/products", id), token: token}, nil)
}

func (c *Client) CreateCategory(ctx context.Context, token string, input CategoryInput) (*Category, error) {
	var category Category
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/categories", token: token, body: input}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, token string, id uuid.UUID, input CategoryInput) (*Category, error) {
	var category Category
	if err := c.do(ctx, request{method: http.MethodPut, path: pathID("/admin/categories", id), token: token, body: input}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pathID("/admin/categories", id), token: token}, nil)
}

// UpdateOrderStatus moves an order to a new fulfilment status.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id uuid.UUID, status string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   pathID("/admin/orders", id) + "/status",
		query:  url.Values{"status": {status}},
		token:  token,
	}, nil)
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, token string, id uuid.UUID, status string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   pathID("/admin/orders", id) + "/payment-status",
		query:  url.Values{"payment_status": {status}},
		token:  token,
	}, nil)
}
