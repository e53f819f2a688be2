package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kevmuri/bookstore-api/internal/config"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/handler"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/middleware"
	"github.com/kevmuri/bookstore-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth   *handler.AuthHandler
	Book   *handler.BookHandler
	Sale   *handler.SaleHandler
	Return *handler.ReturnHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/profile", h.Auth.Profile)

	// Catalog
	books := protected.Group("/books")
	{
		books.GET("", h.Book.List)
		books.GET("/low-stock", h.Book.LowStock)
		books.GET("/:id", h.Book.Get)
		books.GET("/:id/stock-movements", h.Book.StockMovements)

		admin := books.Group("")
		admin.Use(middleware.RequireRole(enum.RoleAdmin))
		{
			admin.POST("", h.Book.Create)
			admin.PUT("/:id", h.Book.Update)
			admin.DELETE("/:id", h.Book.Delete)
		}
	}

	// Sales. Checkout requires an Idempotency-Key so client retries cannot
	// charge stock twice.
	sales := protected.Group("/sales")
	{
		sales.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Sale.Create)
		sales.GET("", h.Sale.List)
		sales.GET("/reports/daily", h.Sale.DailyReport)
		sales.GET("/:id", h.Sale.Get)
	}

	// Returns
	returns := protected.Group("/returns")
	returns.Use(middleware.RequireRole(enum.RoleAdmin, enum.RoleCashier))
	{
		returns.POST("", h.Return.Create)
		returns.GET("", h.Return.List)
		returns.GET("/:id", h.Return.Get)
	}
}
