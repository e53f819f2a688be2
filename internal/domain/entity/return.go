package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Return represents a reversal of part or all of a committed sale.
// Returns are terminal on creation; there is no pending state.
type Return struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SaleID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"sale_id"`
	UserID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalRefunded int64             `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Reason        *string           `gorm:"type:text" json:"reason,omitempty"`
	Status        enum.ReturnStatus `gorm:"size:20;not null" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`

	// Relationships
	Sale  Sale         `gorm:"foreignKey:SaleID" json:"-"`
	User  User         `gorm:"foreignKey:UserID" json:"-"`
	Items []ReturnItem `gorm:"foreignKey:ReturnID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r Return) MarshalJSON() ([]byte, error) {
	type Alias Return
	return json.Marshal(&struct {
		Alias
		TotalRefunded float64 `json:"total_refunded"`
	}{
		Alias:         Alias(r),
		TotalRefunded: float64(r.TotalRefunded) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new return
func (r *Return) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Return model
func (Return) TableName() string {
	return "returns"
}

// ReturnItem represents a line item in a return
type ReturnItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReturnID     uuid.UUID `gorm:"type:uuid;not null;index" json:"return_id"`
	BookID       uuid.UUID `gorm:"type:uuid;not null;index" json:"book_id"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	RefundAmount int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Return Return `gorm:"foreignKey:ReturnID" json:"-"`
	Book   Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (ri ReturnItem) MarshalJSON() ([]byte, error) {
	type Alias ReturnItem
	return json.Marshal(&struct {
		Alias
		RefundAmount float64 `json:"refund_amount"`
	}{
		Alias:        Alias(ri),
		RefundAmount: float64(ri.RefundAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new return item
func (ri *ReturnItem) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnItem model
func (ReturnItem) TableName() string {
	return "return_items"
}
