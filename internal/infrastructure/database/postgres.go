package database

import (
	"fmt"
	"log"

	"github.com/kevmuri/bookstore-api/internal/config"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Operator entities
		&entity.User{},

		// Catalog entities
		&entity.Book{},

		// Transaction entities
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.Payment{},
		&entity.Return{},
		&entity.ReturnItem{},

		// Audit entities
		&entity.StockMovement{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData creates the initial admin user when one is configured and
// none exists yet
func SeedDefaultData(db *gorm.DB, cfg *config.AdminConfig) error {
	log.Println("Seeding default data...")

	if cfg.Email == "" || cfg.Password == "" {
		log.Println("No admin credentials configured, skipping admin seed")
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", cfg.Email).First(&existing).Error; err == nil {
		log.Printf("Admin user already exists: %s", cfg.Email)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := entity.User{
		Name:     "Admin",
		Email:    cfg.Email,
		Password: string(hashedPassword),
		Role:     enum.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Admin user created: %s", cfg.Email)
	return nil
}
