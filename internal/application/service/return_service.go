package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/enum"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/pkg/apperror"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// ReturnService handles reversals of committed sales
type ReturnService struct {
	txManager    repository.TxManager
	returnRepo   repository.ReturnRepository
	saleRepo     repository.SaleRepository
	saleItemRepo repository.SaleItemRepository
	bookRepo     repository.BookRepository
	movementRepo repository.StockMovementRepository
}

// NewReturnService creates a new return service
func NewReturnService(
	txManager repository.TxManager,
	returnRepo repository.ReturnRepository,
	saleRepo repository.SaleRepository,
	saleItemRepo repository.SaleItemRepository,
	bookRepo repository.BookRepository,
	movementRepo repository.StockMovementRepository,
) *ReturnService {
	return &ReturnService{
		txManager:    txManager,
		returnRepo:   returnRepo,
		saleRepo:     saleRepo,
		saleItemRepo: saleItemRepo,
		bookRepo:     bookRepo,
		movementRepo: movementRepo,
	}
}

// ReturnItemInput represents an item being returned
type ReturnItemInput struct {
	BookID   uuid.UUID
	Quantity int
}

// CreateReturnInput represents the create return input
type CreateReturnInput struct {
	SaleID uuid.UUID
	UserID uuid.UUID
	Reason *string
	Items  []ReturnItemInput
}

// ReturnResult is the summary returned after a committed return
type ReturnResult struct {
	ReturnID      uuid.UUID `json:"return_id"`
	TotalRefunded float64   `json:"total_refunded"`
}

// CreateReturn reverses part of a sale as one atomic transaction. Each book
// row is locked before the already-returned quantity for that sale/book pair
// is read, so two returns racing against the same sale serialize and the
// over-return guard holds: returned quantity can never exceed sold quantity.
func (s *ReturnService) CreateReturn(ctx context.Context, input *CreateReturnInput) (*ReturnResult, error) {
	if input.SaleID == uuid.Nil {
		return nil, apperror.NewValidationError("sale_id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewValidationError("Return must contain at least one item")
	}

	for _, item := range input.Items {
		if item.BookID == uuid.Nil {
			return nil, apperror.NewValidationError("Item book_id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperror.NewValidationError("Item quantity must be a positive integer")
		}
	}

	// Same coalescing and lock ordering as checkout, so a return and a sale
	// touching the same titles cannot deadlock.
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

	var result *ReturnResult
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.GetByID(ctx, input.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return apperror.NewNotFoundError("Sale")
		}

		var totalRefunded int64
		returnItems := make([]entity.ReturnItem, 0, len(bookIDs))
		movements := make([]entity.StockMovement, 0, len(bookIDs))

		for _, bookID := range bookIDs {
			// Lock first, validate second. The already-returned sum below is
			// only trustworthy while this lock is held.
			book, err := s.bookRepo.GetByIDForUpdate(ctx, bookID)
			if err != nil {
				return err
			}
			if book == nil {
				return apperror.NewNotFoundError("Book " + bookID.String())
			}

			soldItem, err := s.saleItemRepo.GetBySaleAndBook(ctx, input.SaleID, bookID)
			if err != nil {
				return err
			}
			if soldItem == nil {
				return apperror.NewNotFoundError("Book " + book.Title + " in this sale")
			}

			alreadyReturned, err := s.returnRepo.SumReturnedQuantity(ctx, input.SaleID, bookID)
			if err != nil {
				return err
			}

			qty := quantities[bookID]
			if alreadyReturned+qty > soldItem.Quantity {
				return apperror.NewOverReturnError(book.Title, soldItem.Quantity, alreadyReturned, qty)
			}

			refund := soldItem.UnitPrice * int64(qty)
			totalRefunded += refund

			returnItems = append(returnItems, entity.ReturnItem{
				BookID:       bookID,
				Quantity:     qty,
				RefundAmount: refund,
			})
			movements = append(movements, entity.StockMovement{
				BookID:         bookID,
				ChangeQuantity: qty,
				Reason:         enum.MovementReasonReturn,
			})

			if err := s.bookRepo.AtomicIncrementQuantity(ctx, bookID, qty); err != nil {
				return err
			}
		}

		ret := &entity.Return{
			SaleID:        input.SaleID,
			UserID:        input.UserID,
			TotalRefunded: totalRefunded,
			Reason:        input.Reason,
			Status:        enum.ReturnStatusCompleted,
		}
		if err := s.returnRepo.Create(ctx, ret); err != nil {
			return err
		}

		for i := range returnItems {
			returnItems[i].ReturnID = ret.ID
		}
		if err := s.returnRepo.CreateItems(ctx, returnItems); err != nil {
			return err
		}

		for i := range movements {
			movements[i].ReferenceID = ret.ID
		}
		if err := s.movementRepo.AppendBatch(ctx, movements); err != nil {
			return err
		}

		result = &ReturnResult{
			ReturnID:      ret.ID,
			TotalRefunded: float64(totalRefunded) / 100,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetReturn retrieves a return with its items
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*entity.Return, error) {
	ret, err := s.returnRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, apperror.NewNotFoundError("Return")
	}
	return ret, nil
}

// ListReturns lists returns with filtering
func (s *ReturnService) ListReturns(ctx context.Context, params *repository.ReturnFilterParams) (*pagination.PaginatedResult[entity.Return], error) {
	returns, total, err := s.returnRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(returns, pag), nil
}
