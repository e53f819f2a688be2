package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"gorm.io/gorm"
)

// StockMovement is an append-only audit entry recording a quantity change
// and its cause. Movements are never updated or deleted; the running sum of
// movements for a book equals its net quantity change since creation.
type StockMovement struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	BookID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"book_id"`
	ChangeQuantity int                 `gorm:"not null" json:"change_quantity"` // negative for sales, positive for returns
	Reason         enum.MovementReason `gorm:"size:20;not null" json:"reason"`
	ReferenceID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"reference_id"` // sale or return id
	CreatedAt      time.Time           `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new stock movement
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}
