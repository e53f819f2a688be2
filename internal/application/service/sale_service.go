package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/pkg/apperror"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// SaleService handles checkout transactions
type SaleService struct {
	txManager    repository.TxManager
	saleRepo     repository.SaleRepository
	saleItemRepo repository.SaleItemRepository
	bookRepo     repository.BookRepository
	paymentRepo  repository.PaymentRepository
	movementRepo repository.StockMovementRepository
}

// NewSaleService creates a new sale service
func NewSaleService(
	txManager repository.TxManager,
	saleRepo repository.SaleRepository,
	saleItemRepo repository.SaleItemRepository,
	bookRepo repository.BookRepository,
	paymentRepo repository.PaymentRepository,
	movementRepo repository.StockMovementRepository,
) *SaleService {
	return &SaleService{
		txManager:    txManager,
		saleRepo:     saleRepo,
		saleItemRepo: saleItemRepo,
		bookRepo:     bookRepo,
		paymentRepo:  paymentRepo,
		movementRepo: movementRepo,
	}
}

// SaleItemInput represents an item in a cart
type SaleItemInput struct {
	BookID   uuid.UUID
	Quantity int
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	UserID        uuid.UUID
	PaymentMethod string
	Items         []SaleItemInput
}

// SaleResult is the summary returned after a committed sale
type SaleResult struct {
	SaleID        uuid.UUID          `json:"sale_id"`
	TotalAmount   float64            `json:"total_amount"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	ItemCount     int                `json:"item_count"`
}

// CreateSale commits a checkout as one atomic transaction: every book row in
// the cart is locked in ascending id order, stock is verified under the
// locks, and only then are the sale, its items, the payment and the stock
// movements written. Any failure rolls the whole transaction back.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*SaleResult, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewValidationError("Cart must contain at least one item")
	}

	method, ok := enum.NormalizePaymentMethod(input.PaymentMethod)
	if !ok {
		return nil, apperror.NewValidationError("Unsupported payment method: " + input.PaymentMethod)
	}

	for _, item := range input.Items {
		if item.BookID == uuid.Nil {
			return nil, apperror.NewValidationError("Item book_id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperror.NewValidationError("Item quantity must be a positive integer")
		}
	}

	// Coalesce duplicate book ids so each row is locked exactly once, then
	// sort ascending. Locking in a single global order prevents two
	// concurrent checkouts from deadlocking on overlapping carts.
	quantities := make(map[uuid.UUID]int)
	for _, item := range input.Items {
		quantities[item.BookID] += item.Quantity
	}
	bookIDs := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		bookIDs = append(bookIDs, id)
	}
	sort.Slice(bookIDs, func(i, j int) bool {
		return bookIDs[i].String() < bookIDs[j].String()
	})

	var result *SaleResult
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var totalAmount int64
		saleItems := make([]entity.SaleItem, 0, len(bookIDs))
		movements := make([]entity.StockMovement, 0, len(bookIDs))

		for _, bookID := range bookIDs {
			book, err := s.bookRepo.GetByIDForUpdate(ctx, bookID)
			if err != nil {
				return err
			}
			if book == nil {
				return apperror.NewNotFoundError("Book " + bookID.String())
			}

			qty := quantities[bookID]
			if book.Quantity < qty {
				return apperror.NewInsufficientStockError(book.Title, book.Quantity, qty)
			}

			subtotal := book.Price * int64(qty)
			totalAmount += subtotal

			saleItems = append(saleItems, entity.SaleItem{
				BookID:    bookID,
				Quantity:  qty,
				UnitPrice: book.Price,
				Subtotal:  subtotal,
			})
			movements = append(movements, entity.StockMovement{
				BookID:         bookID,
				ChangeQuantity: -qty,
				Reason:         enum.MovementReasonSale,
			})

			ok, err := s.bookRepo.AtomicDecrementQuantity(ctx, bookID, qty)
			if err != nil {
				return err
			}
			if !ok {
				// Row is locked and the quantity was just checked; reaching
				// here means the stock check and the decrement disagree.
				return apperror.NewInsufficientStockError(book.Title, book.Quantity, qty)
			}
		}

		sale := &entity.Sale{
			UserID:      input.UserID,
			TotalAmount: totalAmount,
		}
		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		for i := range saleItems {
			saleItems[i].SaleID = sale.ID
		}
		if err := s.saleItemRepo.CreateBatch(ctx, saleItems); err != nil {
			return err
		}

		payment := &entity.Payment{
			SaleID: sale.ID,
			Method: method,
			Amount: totalAmount,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		for i := range movements {
			movements[i].ReferenceID = sale.ID
		}
		if err := s.movementRepo.AppendBatch(ctx, movements); err != nil {
			return err
		}

		result = &SaleResult{
			SaleID:        sale.ID,
			TotalAmount:   float64(totalAmount) / 100,
			PaymentMethod: method,
			ItemCount:     len(saleItems),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetSale retrieves a sale with its items and payment
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// DailyReport returns the sales report for one calendar day
func (s *SaleService) DailyReport(ctx context.Context, day time.Time) (*repository.DailyReport, error) {
	return s.saleRepo.DailyReport(ctx, day)
}
