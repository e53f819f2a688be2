package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"gorm.io/gorm"
)

type stockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository creates a new stock movement repository
func NewStockMovementRepository(db *gorm.DB) domainRepo.StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Append(ctx context.Context, movement *entity.StockMovement) error {
	return conn(ctx, r.db).Create(movement).Error
}

func (r *stockMovementRepository) AppendBatch(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&movements).Error
}

func (r *stockMovementRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]entity.StockMovement, error) {
	var movements []entity.StockMovement
	err := conn(ctx, r.db).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) SumByBook(ctx context.Context, bookID uuid.UUID) (int, error) {
	var sum int
	err := conn(ctx, r.db).Model(&entity.StockMovement{}).
		Select("COALESCE(SUM(change_quantity), 0)").
		Where("book_id = ?", bookID).
		Scan(&sum).Error
	return sum, err
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return conn(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := conn(ctx, r.db).First(&payment, "sale_id = ?", saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payment, err
}
