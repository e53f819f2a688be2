package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// ReturnRepository defines the interface for return data operations
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.Return) error
	CreateItems(ctx context.Context, items []entity.ReturnItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Return, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Return, error)
	List(ctx context.Context, params *ReturnFilterParams) ([]entity.Return, int64, error)
	// SumReturnedQuantity totals the quantity already returned for a
	// (sale, book) pair across all committed returns. Called inside the
	// return transaction, after the book row lock is held, so two returns
	// racing on the same sale/book serialize before reading this sum.
	SumReturnedQuantity(ctx context.Context, saleID, bookID uuid.UUID) (int, error)
}

// ReturnFilterParams contains filtering parameters for return queries
type ReturnFilterParams struct {
	Pagination *pagination.PaginationParams
	UserID     *uuid.UUID
	SaleID     *uuid.UUID
}
