package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/pkg/apperror"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// BookService handles catalog operations
type BookService struct {
	bookRepo     repository.BookRepository
	movementRepo repository.StockMovementRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repository.BookRepository, movementRepo repository.StockMovementRepository) *BookService {
	return &BookService{
		bookRepo:     bookRepo,
		movementRepo: movementRepo,
	}
}

// CreateBookInput represents the create book input
type CreateBookInput struct {
	Title         string
	Author        string
	ISBN          string
	Price         float64
	Quantity      int
	QuantityAlert int
}

// CreateBook adds a title to the catalog
func (s *BookService) CreateBook(ctx context.Context, input *CreateBookInput) (*entity.Book, error) {
	if input.Title == "" {
		return nil, apperror.NewValidationError("Title is required")
	}
	if input.Price < 0 {
		return nil, apperror.NewValidationError("Price cannot be negative")
	}
	if input.Quantity < 0 {
		return nil, apperror.NewValidationError("Quantity cannot be negative")
	}

	book := &entity.Book{
		Title:         input.Title,
		Author:        input.Author,
		ISBN:          input.ISBN,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
	}
	book.SetPriceFromDecimal(input.Price)

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBookInput represents the update book input. Nil fields are left as-is.
type UpdateBookInput struct {
	Title         *string
	Author        *string
	ISBN          *string
	Price         *float64
	QuantityAlert *int
}

// UpdateBook updates catalog fields of a book. Quantity is deliberately not
// updatable here; stock only changes through sales, returns and their
// movements.
func (s *BookService) UpdateBook(ctx context.Context, id uuid.UUID, input *UpdateBookInput) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperror.NewNotFoundError("Book")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperror.NewValidationError("Title cannot be empty")
		}
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperror.NewValidationError("Price cannot be negative")
		}
		book.SetPriceFromDecimal(*input.Price)
	}
	if input.QuantityAlert != nil {
		book.QuantityAlert = *input.QuantityAlert
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves a book by ID
func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperror.NewNotFoundError("Book")
	}
	return book, nil
}

// DeleteBook removes a book from the catalog
func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if book == nil {
		return apperror.NewNotFoundError("Book")
	}
	return s.bookRepo.Delete(ctx, id)
}

// ListBooks lists books with filtering
func (s *BookService) ListBooks(ctx context.Context, params *repository.BookFilterParams) (*pagination.PaginatedResult[entity.Book], error) {
	books, total, err := s.bookRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(books, pag), nil
}

// GetLowStockBooks returns books at or below their alert threshold
func (s *BookService) GetLowStockBooks(ctx context.Context) ([]entity.Book, error) {
	return s.bookRepo.GetLowStock(ctx)
}

// StockMovementHistory is a book's movement trail plus the signed sum of all
// its deltas since the catalog entry was created.
type StockMovementHistory struct {
	Movements []entity.StockMovement `json:"movements"`
	NetChange int                    `json:"net_change"`
}

// GetStockMovements returns the audit trail for a book
func (s *BookService) GetStockMovements(ctx context.Context, bookID uuid.UUID) (*StockMovementHistory, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperror.NewNotFoundError("Book")
	}

	movements, err := s.movementRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	netChange, err := s.movementRepo.SumByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	return &StockMovementHistory{Movements: movements, NetChange: netChange}, nil
}
