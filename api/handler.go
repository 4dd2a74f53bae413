package api

import (
	"errors"
	"net/http"

	"retail_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req createSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	in, err := req.toInput()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	result, err := h.salesService.CreateSale(ctx.Request.Context(), in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, apiResponse{
		Success: true,
		Message: "Sale created successfully",
		Data: createSaleResponse{
			SaleID:      result.SaleID,
			SaleNumber:  result.SaleNumber,
			TotalAmount: result.TotalAmount,
		},
	})
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx)
	if !ok {
		return
	}

	sale, err := h.salesService.GetSale(ctx.Request.Context(), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "Sale retrieved successfully",
		Data:    toSaleResponse(sale),
	})
}

// handleCancelSale handles POST /sales/:id/cancel.
func (h *salesHandler) handleCancelSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx)
	if !ok {
		return
	}

	sale, err := h.salesService.CancelSale(ctx.Request.Context(), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "Sale cancelled successfully",
		Data:    toSaleResponse(sale),
	})
}

// handleSearchSales handles GET /sales with optional customer_id and state filters.
func (h *salesHandler) handleSearchSales(ctx *gin.Context) {
	customerID, err := parseOptionalID(ctx.Query("customer_id"))
	if err != nil {
		h.respondError(ctx, invalidField("customer_id", err))
		return
	}
	state := ctx.Query("state")

	salesResults, metadata, err := h.salesService.SearchSales(ctx.Request.Context(), customerID, state)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	results := make([]saleResponse, 0, len(salesResults))
	for _, s := range salesResults {
		results = append(results, toSaleResponse(s))
	}

	ctx.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "Sales retrieved successfully",
		Data:    searchSalesResponse{Results: results, Metadata: metadata},
	})
}

func (h *salesHandler) saleID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		h.respondError(ctx, invalidField("id", err))
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates service errors into HTTP responses. Rule
// violations of either kind are client errors.
func (h *salesHandler) respondError(ctx *gin.Context, err error) {
	var validationErr *sales.ValidationError
	var domainErr *sales.DomainError

	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn("validation failed", zap.Error(err))
		details := make([]errorDetail, 0, len(validationErr.Violations))
		for _, v := range validationErr.Violations {
			details = append(details, errorDetail{Error: v.Field, Detail: v.Message})
		}
		ctx.JSON(http.StatusBadRequest, apiResponse{Message: "Validation failed.", Errors: details})
	case errors.As(err, &domainErr):
		h.logger.Warn("business rule violation", zap.String("kind", string(domainErr.Kind)), zap.Error(err))
		ctx.JSON(http.StatusBadRequest, apiResponse{
			Message: "Business rule violation.",
			Errors:  []errorDetail{{Error: "DomainRule", Detail: domainErr.Message}},
		})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, apiResponse{Message: "Sale not found."})
	case errors.Is(err, sales.ErrDuplicateSaleNumber):
		h.logger.Warn("sale number collision", zap.Error(err))
		ctx.JSON(http.StatusConflict, apiResponse{Message: "Sale number already exists, please retry."})
	default:
		h.logger.Error("unhandled error", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, apiResponse{
			Message: "An unexpected internal server error has occurred.",
			Errors:  []errorDetail{{Error: "InternalError", Detail: "An unexpected error occurred."}},
		})
	}
}

func bindingErrorResponse(err error) apiResponse {
	resp := apiResponse{Message: "invalid request payload"}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			resp.Errors = append(resp.Errors, errorDetail{Error: fe.Field(), Detail: fe.Error()})
		}
		return resp
	}
	resp.Errors = []errorDetail{{Error: "Body", Detail: err.Error()}}
	return resp
}
