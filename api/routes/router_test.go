package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/admins"
	"github.com/angelmondragon/storefront-backend/internal/blog"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/health"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/stats"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: "*"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "storefront", ExpirationMinutes: 30},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginIPLimit:       20,
			LoginUsernameLimit: 5,
		},
		Catalog: config.CatalogConfig{MaxPageSize: 100, BrowseLimit: 50, SearchLimit: 20},
	}
}

// newTestRouter wires the real services over SQLite and miniredis.
func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	redisClient := redis.NewFromClient(raw)

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	policy := pricing.DefaultPolicy()

	categoryRepo := categories.NewRepository(conn)
	categoryService, err := categories.NewService(categoryRepo, client, nil)
	require.NoError(t, err)

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo, categoryRepo, cfg.Catalog, metrics.NewCatalogMetrics(registry), nil)
	require.NoError(t, err)

	blogService, err := blog.NewService(blog.NewRepository(conn), categoryRepo, nil)
	require.NoError(t, err)

	carts := cart.NewMemoryStore(time.Hour)
	cartService, err := cart.NewService(carts, productService, policy, metrics.NewCartMetrics(registry), nil)
	require.NoError(t, err)

	orderService, err := orders.NewService(orders.NewRepository(conn), client, carts, productRepo, policy, nil)
	require.NoError(t, err)

	adminService, err := admins.NewService(admins.ServiceParams{
		Repo:           admins.NewRepository(conn),
		Sessions:       sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)

	statsService, err := stats.NewService(conn)
	require.NoError(t, err)

	healthService, err := health.NewService(health.NewRepository(conn), nil)
	require.NoError(t, err)

	return NewRouter(
		cfg,
		nil,
		client,
		redisClient,
		sessions,
		registry,
		metrics.NewHTTPMetrics(registry),
		productService,
		categoryService,
		blogService,
		cartService,
		orderService,
		adminService,
		statsService,
		healthService,
	)
}

type apiCall struct {
	method  string
	path    string
	body    string
	token   string
	session string
}

func do(t *testing.T, h http.Handler, call apiCall) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if call.body != "" {
		body = strings.NewReader(call.body)
	}
	req := httptest.NewRequest(call.method, call.path, body)
	if call.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.token != "" {
		req.Header.Set("Authorization", "Bearer "+call.token)
	}
	if call.session != "" {
		req.Header.Set("X-Session-Id", call.session)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func data(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.NewDecoder(bytes.NewReader(resp.Body.Bytes())).Decode(&envelope), resp.Body.String())
}

func loginOwner(t *testing.T, h http.Handler) string {
	t.Helper()
	resp := do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/register", body: `{"username":"owner","email":"owner@example.com","password":"correct-horse"}`})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/login", body: `{"username":"owner","password":"correct-horse"}`})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var login admins.LoginResponse
	data(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func TestHealthAndSessionHeader(t *testing.T) {
	h := newTestRouter(t, testConfig())

	resp := do(t, h, apiCall{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-Storefront-Env"))
	assert.Empty(t, resp.Header().Get("X-Session-Id"))

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/products"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Session-Id"))
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/cart", session: "shopper-1"})
	assert.Equal(t, "shopper-1", resp.Header().Get("X-Session-Id"))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := newTestRouter(t, testConfig())

	for _, path := range []string{"/api/admin/stats", "/api/admin/products", "/api/admin/me"} {
		resp := do(t, h, apiCall{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}

	resp := do(t, h, apiCall{method: http.MethodGet, path: "/api/admin/stats", token: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newTestRouter(t, testConfig())
	token := loginOwner(t, h)

	resp := do(t, h, apiCall{method: http.MethodGet, path: "/api/admin/me", token: token})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/logout", token: token})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/admin/me", token: token})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestStorefrontCheckoutFlow(t *testing.T) {
	h := newTestRouter(t, testConfig())
	token := loginOwner(t, h)

	resp := do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/categories", token: token, body: `{"name":"Produce","slug":"produce"}`})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var category categories.CategoryDTO
	data(t, resp, &category)

	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/products", token: token, body: `{
		"slug": "heirloom-seeds",
		"name": "Heirloom Seeds",
		"description": "Open pollinated",
		"category_id": "` + category.ID.String() + `",
		"price": "20.00",
		"affiliate_url": "https://example.com/seeds",
		"is_featured": true
	}`})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var product products.ProductDTO
	data(t, resp, &product)
	assert.Equal(t, "Produce", product.CategoryName)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/products/slug/heirloom-seeds"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/products/browse?best_sellers_only=true&sort_by=price-low"})
	require.Equal(t, http.StatusOK, resp.Code)
	var browse struct {
		Total int `json:"total"`
	}
	data(t, resp, &browse)
	assert.Equal(t, 1, browse.Total)

	const shopper = "shopper-e2e"
	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/cart/items", session: shopper, body: `{"product_id":"` + product.ID.String() + `","quantity":2}`})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var view cart.View
	data(t, resp, &view)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "40.00", view.Summary.Subtotal)
	assert.Equal(t, "9.99", view.Summary.Shipping)
	assert.Equal(t, "3.20", view.Summary.Tax)
	assert.Equal(t, "53.19", view.Summary.Total)

	order := `{
		"shipping_address": {
			"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
			"address": "1 Farm Road", "city": "Springfield", "state": "OR", "zip_code": "97477", "country": "US"
		},
		"subtotal": "40.00"
	}`
	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/orders", session: shopper, body: order})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created orders.OrderDTO
	data(t, resp, &created)
	assert.True(t, strings.HasPrefix(created.OrderNumber, "ORD-"))
	assert.Equal(t, "53.19", created.Total)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/cart", session: shopper})
	data(t, resp, &view)
	assert.Zero(t, view.ItemCount)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/orders/by-number/" + strings.ToLower(created.OrderNumber)})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodPut, path: "/api/admin/orders/" + created.ID.String() + "/status?status=processing", token: token})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = do(t, h, apiCall{method: http.MethodPut, path: "/api/admin/orders/" + created.ID.String() + "/payment-status?payment_status=paid", token: token})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/orders/" + created.ID.String(), session: shopper})
	require.Equal(t, http.StatusOK, resp.Code)
	var tracked orders.OrderDTO
	data(t, resp, &tracked)
	assert.Equal(t, "processing", string(tracked.Status))
	assert.Equal(t, "paid", string(tracked.PaymentStatus))

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/admin/stats", token: token})
	require.Equal(t, http.StatusOK, resp.Code)
	var dashboard stats.Dashboard
	data(t, resp, &dashboard)
	assert.EqualValues(t, 1, dashboard.TotalProducts)
	assert.EqualValues(t, 1, dashboard.TotalCategories)
	assert.EqualValues(t, 1, dashboard.FeaturedProducts)

	resp = do(t, h, apiCall{method: http.MethodDelete, path: "/api/admin/categories/" + category.ID.String(), token: token})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `route="/api/cart/items"`)
}

func TestOrderStatusChangesRequireAdmin(t *testing.T) {
	h := newTestRouter(t, testConfig())
	orderID := "00000000-0000-0000-0000-000000000001"

	for _, path := range []string{
		"/api/admin/orders/" + orderID + "/status?status=cancelled",
		"/api/admin/orders/" + orderID + "/payment-status?payment_status=refunded",
	} {
		resp := do(t, h, apiCall{method: http.MethodPut, path: path, session: "shopper-1"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}

	resp := do(t, h, apiCall{method: http.MethodPut, path: "/api/orders/" + orderID + "/status?status=cancelled", session: "shopper-1"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	token := loginOwner(t, h)
	resp = do(t, h, apiCall{method: http.MethodPut, path: "/api/admin/orders/" + orderID + "/status?status=cancelled", token: token})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBlogPostRoutes(t *testing.T) {
	h := newTestRouter(t, testConfig())
	token := loginOwner(t, h)

	resp := do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/blog/posts", token: token, body: `{
		"title": "Winter Feeding",
		"slug": "winter-feeding",
		"content": "Keep hay dry.",
		"author": "Barn Team",
		"is_published": true
	}`})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var post blog.PostDTO
	data(t, resp, &post)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/blog/posts"})
	require.Equal(t, http.StatusOK, resp.Code)
	var posts []blog.PostDTO
	data(t, resp, &posts)
	require.Len(t, posts, 1)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/blog/posts/slug/winter-feeding"})
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/blog/posts/" + post.ID.String()})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/admin/blog/posts"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = do(t, h, apiCall{method: http.MethodDelete, path: "/api/admin/blog/posts/" + post.ID.String(), token: token})
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestHealthHubRoutes(t *testing.T) {
	h := newTestRouter(t, testConfig())

	resp := do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/health/articles", body: `{"title":"Dental Care","content":"Brush daily","category":"Dental"}`})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	token := loginOwner(t, h)
	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/health/articles", token: token, body: `{"title":"Dental Care","excerpt":"Teeth","content":"Brush daily","image":"https://cdn.example/d.jpg","read_time":"3 min read","category":"Dental","featured":true}`})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var article health.ArticleDTO
	data(t, resp, &article)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/articles?category=dent&featured_only=true"})
	require.Equal(t, http.StatusOK, resp.Code)
	var articles []health.ArticleDTO
	data(t, resp, &articles)
	require.Len(t, articles, 1)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/articles/" + article.ID.String()})
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/articles/category/Dental"})
	data(t, resp, &articles)
	assert.Len(t, articles, 1)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/categories"})
	var categories struct {
		Categories []health.CategoryCount `json:"categories"`
	}
	data(t, resp, &categories)
	assert.Equal(t, []health.CategoryCount{{Name: "Dental", Count: 1}}, categories.Categories)

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/benefits"})
	var benefits struct {
		Benefits []health.Benefit `json:"benefits"`
	}
	data(t, resp, &benefits)
	assert.Len(t, benefits.Benefits, 4)

	resp = do(t, h, apiCall{method: http.MethodPost, path: "/api/health/testimonials", body: `{"name":"Jo","avatar":"J","rating":5,"text":"Great toys","pet_name":"Biscuit"}`})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var testimonial health.TestimonialDTO
	data(t, resp, &testimonial)
	assert.False(t, testimonial.Verified)

	var testimonials []health.TestimonialDTO
	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/testimonials"})
	data(t, resp, &testimonials)
	assert.Empty(t, testimonials)

	resp = do(t, h, apiCall{method: http.MethodPut, path: "/api/admin/health/testimonials/" + testimonial.ID.String() + "/verify", token: token, body: `{"verified":true}`})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = do(t, h, apiCall{method: http.MethodGet, path: "/api/health/testimonials"})
	data(t, resp, &testimonials)
	assert.Len(t, testimonials, 1)
}

func TestLoginRateLimitedPerUsername(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit.LoginUsernameLimit = 2
	h := newTestRouter(t, cfg)

	body := `{"username":"nobody","password":"whatever"}`
	for i := 0; i < 2; i++ {
		resp := do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/login", body: body})
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}
	resp := do(t, h, apiCall{method: http.MethodPost, path: "/api/admin/login", body: body})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t, testConfig())
	resp := do(t, h, apiCall{method: http.MethodGet, path: "/api/nope"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
