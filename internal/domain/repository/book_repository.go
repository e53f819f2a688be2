package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// BookRepository defines the interface for catalog data operations
type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error)
	// GetByIDForUpdate reads a book under an exclusive row lock. Must be
	// called inside a TxManager transaction; the lock is held until the
	// transaction commits or rolls back.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Book, error)
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *BookFilterParams) ([]entity.Book, int64, error)
	GetLowStock(ctx context.Context) ([]entity.Book, error)
	// AtomicDecrementQuantity decrements stock only while quantity >= amount,
	// reporting whether a row was updated.
	AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	AtomicIncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error
}

// BookFilterParams contains filtering parameters for catalog queries
type BookFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	LowStock   bool
}
