package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) domainRepo.BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	return conn(ctx, r.db).Create(book).Error
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	var book entity.Book
	err := conn(ctx, r.db).First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &book, err
}

// GetByIDForUpdate reads the book row with SELECT ... FOR UPDATE. The lock is
// held until the enclosing transaction ends, serializing concurrent writers
// on the same title.
func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	var book entity.Book
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &book, err
}

func (r *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	return conn(ctx, r.db).Save(book).Error
}

func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Book{}, "id = ?", id).Error
}

func (r *bookRepository) List(ctx context.Context, params *domainRepo.BookFilterParams) ([]entity.Book, int64, error) {
	var books []entity.Book
	var total int64

	query := conn(ctx, r.db).Model(&entity.Book{})

	if params.Search != "" {
		query = query.Where("title ILIKE ? OR author ILIKE ? OR isbn ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.LowStock {
		query = query.Where("quantity <= quantity_alert")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("title ASC").
		Find(&books).Error

	return books, total, err
}

func (r *bookRepository) GetLowStock(ctx context.Context) ([]entity.Book, error) {
	var books []entity.Book
	err := conn(ctx, r.db).
		Where("quantity <= quantity_alert").
		Order("quantity ASC").
		Find(&books).Error
	return books, err
}

// AtomicDecrementQuantity atomically decrements stock only if sufficient quantity exists.
// Uses: UPDATE books SET quantity = quantity - amount WHERE id = ? AND quantity >= amount
func (r *bookRepository) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Book{}).
		Where("id = ? AND quantity >= ?", id, amount).
		Update("quantity", gorm.Expr("quantity - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}

	// If no rows were affected, insufficient stock
	return result.RowsAffected > 0, nil
}

func (r *bookRepository) AtomicIncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	return conn(ctx, r.db).Model(&entity.Book{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", amount)).Error
}
