package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book represents a title in the catalog
type Book struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Author        string         `gorm:"size:255" json:"author"`
	ISBN          string         `gorm:"size:20;unique" json:"isbn"`
	Price         int64          `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	Quantity      int            `gorm:"not null;default:0" json:"quantity"`
	QuantityAlert int            `gorm:"default:0" json:"quantity_alert"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (b Book) MarshalJSON() ([]byte, error) {
	type Alias Book
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
	}{
		Alias: Alias(b),
		Price: float64(b.Price) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new book
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Book model
func (Book) TableName() string {
	return "books"
}

// GetPriceDecimal returns the price as a decimal (for display)
func (b *Book) GetPriceDecimal() float64 {
	return float64(b.Price) / 100
}

// SetPriceFromDecimal sets the price from a decimal value
func (b *Book) SetPriceFromDecimal(price float64) {
	b.Price = int64(price * 100)
}

// IsLowStock reports whether the quantity has reached the alert threshold
func (b *Book) IsLowStock() bool {
	return b.Quantity <= b.QuantityAlert
}
