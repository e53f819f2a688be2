package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency key repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var record entity.IdempotencyKey
	err := conn(ctx, r.db).
		First(&record, "key = ? AND user_id = ?", key, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *idempotencyRepository) Create(ctx context.Context, key *entity.IdempotencyKey) error {
	return conn(ctx, r.db).Create(key).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
