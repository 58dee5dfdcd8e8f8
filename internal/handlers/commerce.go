// internal/handlers/commerce.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// CommerceHandler covers multi-batch orders between chain participants.
type CommerceHandler struct {
	commerceService *services.CommerceService
}

func NewCommerceHandler(commerceService *services.CommerceService) *CommerceHandler {
	return &CommerceHandler{
		commerceService: commerceService,
	}
}

// POST /commerce/orders
func (h *CommerceHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.commerceService.CreateOrder(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyOrderCreated), gin.H{"order": order})
}

// GET /commerce/orders
func (h *CommerceHandler) GetMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.commerceService.GetMyOrders(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /commerce/orders/:id
func (h *CommerceHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.commerceService.GetOrder(userID, orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "", gin.H{"order": order})
}
