package request

// CreateBookRequest represents a book creation request
type CreateBookRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=255"`
	Author        string  `json:"author" binding:"omitempty,max=255"`
	ISBN          string  `json:"isbn" binding:"omitempty,max=20"`
	Price         float64 `json:"price" binding:"min=0"`
	Quantity      int     `json:"quantity" binding:"min=0"`
	QuantityAlert int     `json:"quantity_alert" binding:"min=0"`
}

// UpdateBookRequest represents a book update request
type UpdateBookRequest struct {
	Title         *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Author        *string  `json:"author" binding:"omitempty,max=255"`
	ISBN          *string  `json:"isbn" binding:"omitempty,max=20"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	QuantityAlert *int     `json:"quantity_alert" binding:"omitempty,min=0"`
}

// BookFilterRequest represents book filter parameters
type BookFilterRequest struct {
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
