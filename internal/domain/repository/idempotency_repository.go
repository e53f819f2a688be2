package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key storage
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, key *entity.IdempotencyKey) error
	DeleteExpired(ctx context.Context) (int64, error)
}
