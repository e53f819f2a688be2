package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/application/service"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/dto/request"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/dto/response"
	"github.com/kevmuri/bookstore-api/pkg/pagination"
)

// SaleHandler handles checkout HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles committing a checkout
func (h *SaleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.SaleItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.SaleItemInput{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
	}

	result, err := h.saleService.CreateSale(c.Request.Context(), &service.CreateSaleInput{
		UserID:        *userID,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale completed successfully", result)
}

// Get handles retrieving a sale with its items and payment
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// List handles listing sales with filtering
func (h *SaleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			params.UserID = &userID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// DailyReport handles the daily sales report
func (h *SaleHandler) DailyReport(c *gin.Context) {
	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report, err := h.saleService.DailyReport(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily report retrieved successfully", report)
}
