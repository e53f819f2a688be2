package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
)

// StockMovementRepository appends to the stock audit trail. Movements are
// create-only; there is no update or delete path.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	AppendBatch(ctx context.Context, movements []entity.StockMovement) error
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]entity.StockMovement, error)
	// SumByBook returns the net quantity change recorded for a book.
	SumByBook(ctx context.Context, bookID uuid.UUID) (int, error)
}

// PaymentRepository defines the interface for payment records
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Payment, error)
}
