package request

import "github.com/google/uuid"

// ReturnItemRequest represents one line in a return request
type ReturnItemRequest struct {
	BookID   uuid.UUID `json:"book_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// CreateReturnRequest represents a return request against a committed sale
type CreateReturnRequest struct {
	SaleID uuid.UUID           `json:"sale_id" binding:"required"`
	Reason *string             `json:"reason"`
	Items  []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}
