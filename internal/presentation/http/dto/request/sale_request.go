package request

import "github.com/google/uuid"

// SaleItemRequest represents one cart line in a sale request
type SaleItemRequest struct {
	BookID   uuid.UUID `json:"book_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// CreateSaleRequest represents a checkout request
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" binding:"required"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}
