package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/application/service"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/dto/request"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/dto/response"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	bookService *service.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// Create handles adding a book to the catalog
func (h *BookHandler) Create(c *gin.Context) {
	var req request.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), &service.CreateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Price:         req.Price,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Book created successfully", book)
}

// Get handles retrieving a single book
func (h *BookHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Book retrieved successfully", book)
}

// Update handles updating catalog fields of a book
func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	var req request.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), id, &service.UpdateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Price:         req.Price,
		QuantityAlert: req.QuantityAlert,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Book updated successfully", book)
}

// Delete handles removing a book from the catalog
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List handles listing books with filtering
func (h *BookHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	params := &repository.BookFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true",
	}

	result, err := h.bookService.ListBooks(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Books retrieved successfully", result)
}

// LowStock handles listing books at or below their alert threshold
func (h *BookHandler) LowStock(c *gin.Context) {
	books, err := h.bookService.GetLowStockBooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock books retrieved successfully", books)
}

// StockMovements handles listing the audit trail for a book
func (h *BookHandler) StockMovements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	history, err := h.bookService.GetStockMovements(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock movements retrieved successfully", history)
}
