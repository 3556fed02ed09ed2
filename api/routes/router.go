package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
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
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	categoryService categories.Service,
	blogService blog.Service,
	cartService cart.Service,
	orderService orders.Service,
	adminService admins.Service,
	statsService stats.Service,
	healthService health.Service,
) http.Handler {
	r := chi.NewRouter()

	// nil pointers must not reach the middlewares as non-nil interfaces
	var cachePinger controllers.Pinger
	var limiterStore middleware.RateLimitStore
	if redisClient != nil {
		cachePinger = redisClient
		limiterStore = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}

	loginPolicy := middleware.NewLoginRateLimitPolicy(
		"admin_login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/browse", controllers.ProductBrowse(productService, logg))
			r.Get("/search", controllers.ProductSearch(productService, logg))
			r.Get("/bestsellers", controllers.ProductBestSellers(productService, logg))
			r.Get("/slug/{slug}", controllers.ProductGetBySlug(productService, logg))
			r.Get("/{productId}", controllers.ProductGet(productService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoryService, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(categoryService, logg))
		})

		r.Route("/blog/posts", func(r chi.Router) {
			r.Get("/", controllers.BlogList(blogService, logg))
			r.Get("/slug/{slug}", controllers.BlogGetBySlug(blogService, logg))
			r.Get("/{postId}", controllers.BlogGet(blogService, logg))
		})

		r.Route("/health", func(r chi.Router) {
			r.Get("/articles", controllers.HealthArticleList(healthService, logg))
			r.Get("/articles/category/{category}", controllers.HealthArticlesByCategory(healthService, logg))
			r.Get("/articles/{articleId}", controllers.HealthArticleGet(healthService, logg))
			r.Get("/testimonials", controllers.HealthTestimonialList(healthService, logg))
			r.Post("/testimonials", controllers.HealthTestimonialSubmit(healthService, logg))
			r.Get("/benefits", controllers.HealthBenefits(healthService, logg))
			r.Get("/categories", controllers.HealthCategories(healthService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/by-number/{orderNumber}", controllers.OrderGetByNumber(orderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/register", controllers.AdminRegister(adminService, logg))
			r.With(middleware.LoginRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AdminLogin(adminService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessions, logg))
				r.Use(middleware.RequireAdmin(logg))

				r.Get("/me", controllers.AdminMe(adminService, logg))
				r.Post("/logout", controllers.AdminLogout(adminService, logg))
				r.Get("/stats", controllers.AdminStats(statsService, logg))

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.AdminProductList(productService, logg))
					r.Post("/", controllers.AdminProductCreate(productService, logg))
					r.Get("/{productId}", controllers.AdminProductGet(productService, logg))
					r.Put("/{productId}", controllers.AdminProductUpdate(productService, logg))
					r.Delete("/{productId}", controllers.AdminProductDelete(productService, logg))
				})

				r.Route("/categories", func(r chi.Router) {
					r.Post("/", controllers.AdminCategoryCreate(categoryService, logg))
					r.Put("/{categoryId}", controllers.AdminCategoryUpdate(categoryService, logg))
					r.Delete("/{categoryId}", controllers.AdminCategoryDelete(categoryService, logg))
				})

				r.Route("/blog/posts", func(r chi.Router) {
					r.Get("/", controllers.AdminBlogList(blogService, logg))
					r.Post("/", controllers.AdminBlogCreate(blogService, logg))
					r.Put("/{postId}", controllers.AdminBlogUpdate(blogService, logg))
					r.Delete("/{postId}", controllers.AdminBlogDelete(blogService, logg))
				})

				r.Route("/health", func(r chi.Router) {
					r.Post("/articles", controllers.AdminHealthArticleCreate(healthService, logg))
					r.Put("/testimonials/{testimonialId}/verify", controllers.AdminTestimonialVerify(healthService, logg))
				})

				r.Route("/orders/{orderId}", func(r chi.Router) {
					r.Put("/status", controllers.AdminOrderUpdateStatus(orderService, logg))
					r.Put("/payment-status", controllers.AdminOrderUpdatePaymentStatus(orderService, logg))
				})
			})
		})
	})

	return r
}
