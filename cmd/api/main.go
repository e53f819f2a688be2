package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kevmuri/bookstore-api/internal/application/service"
	"github.com/kevmuri/bookstore-api/internal/config"
	"github.com/kevmuri/bookstore-api/internal/infrastructure/database"
	"github.com/kevmuri/bookstore-api/internal/infrastructure/repository"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/handler"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/routes"
	"github.com/kevmuri/bookstore-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db, &cfg.Admin); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	saleItemRepo := repository.NewSaleItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Sweep expired idempotency keys in the background
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			deleted, err := idempotencyRepo.DeleteExpired(context.Background())
			if err != nil {
				log.Printf("Warning: Failed to delete expired idempotency keys: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("Deleted %d expired idempotency keys", deleted)
			}
		}
	}()

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	bookService := service.NewBookService(bookRepo, movementRepo)
	saleService := service.NewSaleService(txManager, saleRepo, saleItemRepo, bookRepo, paymentRepo, movementRepo)
	returnService := service.NewReturnService(txManager, returnRepo, saleRepo, saleItemRepo, bookRepo, movementRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Book:   handler.NewBookHandler(bookService),
		Sale:   handler.NewSaleHandler(saleService),
		Return: handler.NewReturnHandler(returnService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
