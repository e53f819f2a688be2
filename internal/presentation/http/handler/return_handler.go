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

// ReturnHandler handles return HTTP requests
type ReturnHandler struct {
	returnService *service.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(returnService *service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// Create handles committing a return against a sale
func (h *ReturnHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.ReturnItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.ReturnItemInput{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
	}

	result, err := h.returnService.CreateReturn(c.Request.Context(), &service.CreateReturnInput{
		SaleID: req.SaleID,
		UserID: *userID,
		Reason: req.Reason,
		Items:  items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Return completed successfully", result)
}

// Get handles retrieving a return with its items
func (h *ReturnHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return ID")
		return
	}

	ret, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return retrieved successfully", ret)
}

// List handles listing returns with filtering
func (h *ReturnHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	params := &repository.ReturnFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	// Admins can see everyone's returns; cashiers only their own
	if IsAdmin(c) {
		if userIDStr := c.Query("user_id"); userIDStr != "" {
			if userID, err := uuid.Parse(userIDStr); err == nil {
				params.UserID = &userID
			}
		}
	} else {
		params.UserID = GetUserID(c)
	}

	if saleIDStr := c.Query("sale_id"); saleIDStr != "" {
		if saleID, err := uuid.Parse(saleIDStr); err == nil {
			params.SaleID = &saleID
		}
	}

	result, err := h.returnService.ListReturns(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Returns retrieved successfully", result)
}
