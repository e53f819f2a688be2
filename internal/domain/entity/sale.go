package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale represents a committed checkout transaction
type Sale struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	User    User       `gorm:"foreignKey:UserID" json:"-"`
	Items   []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	Payment *Payment   `gorm:"foreignKey:SaleID" json:"payment,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(s),
		TotalAmount: float64(s.TotalAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem represents a line item in a sale. UnitPrice is the book price
// captured at commit time; it does not change when the catalog price does.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;index" json:"book_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Subtotal  int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Sale Sale `gorm:"foreignKey:SaleID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Subtotal  float64 `json:"subtotal"`
	}{
		Alias:     Alias(si),
		UnitPrice: float64(si.UnitPrice) / 100,
		Subtotal:  float64(si.Subtotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// Payment records the settlement of a sale. One per sale, amount equal to
// the sale total, created in the same transaction as the sale itself.
type Payment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"sale_id"`
	Method    enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Amount    int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time          `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
