package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"gorm.io/gorm"
)

type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return repository
func NewReturnRepository(db *gorm.DB) domainRepo.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *entity.Return) error {
	return conn(ctx, r.db).Create(ret).Error
}

func (r *returnRepository) CreateItems(ctx context.Context, items []entity.ReturnItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&items).Error
}

func (r *returnRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Return, error) {
	var ret entity.Return
	err := conn(ctx, r.db).First(&ret, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ret, err
}

func (r *returnRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Return, error) {
	var ret entity.Return
	err := conn(ctx, r.db).
		Preload("Items.Book").
		First(&ret, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ret, err
}

func (r *returnRepository) List(ctx context.Context, params *domainRepo.ReturnFilterParams) ([]entity.Return, int64, error) {
	var returns []entity.Return
	var total int64

	query := conn(ctx, r.db).Model(&entity.Return{})

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	if params.SaleID != nil {
		query = query.Where("sale_id = ?", *params.SaleID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&returns).Error

	return returns, total, err
}

// SumReturnedQuantity totals quantity already returned for a sale/book pair.
// Runs inside the return transaction after the book row lock is taken, so
// the sum cannot go stale before the insert that follows it.
func (r *returnRepository) SumReturnedQuantity(ctx context.Context, saleID, bookID uuid.UUID) (int, error) {
	var sum int
	err := conn(ctx, r.db).Model(&entity.ReturnItem{}).
		Select("COALESCE(SUM(return_items.quantity), 0)").
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.sale_id = ? AND return_items.book_id = ?", saleID, bookID).
		Scan(&sum).Error
	return sum, err
}
