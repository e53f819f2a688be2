package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	DailyReport(ctx context.Context, day time.Time) (*DailyReport, error)
}

// SaleItemRepository defines the interface for sale line item operations
type SaleItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.SaleItem) error
	GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error)
	GetBySaleAndBook(ctx context.Context, saleID, bookID uuid.UUID) (*entity.SaleItem, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	UserID     *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// DailyReport aggregates one day of sales
type DailyReport struct {
	Date              string               `json:"date"`
	TotalTransactions int64                `json:"total_transactions"`
	TotalSales        float64              `json:"total_sales"`
	AverageSale       float64              `json:"average_sale"`
	ByPaymentMethod   []PaymentMethodTotal `json:"by_payment_method"`
	TopBooks          []TopBook            `json:"top_books"`
}

// PaymentMethodTotal is the per-method slice of a daily report
type PaymentMethodTotal struct {
	Method enum.PaymentMethod `json:"payment_method"`
	Count  int64              `json:"count"`
	Total  float64            `json:"total"`
}

// TopBook is a best-seller row in a daily report
type TopBook struct {
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	TotalSold int64     `json:"total_sold"`
	Revenue   float64   `json:"revenue"`
}
