// internal/handlers/shop.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// ShopHandler covers the retail end of the chain: shop inventory and the
// final sale to a consumer.
type ShopHandler struct {
	batchService *services.BatchService
}

func NewShopHandler(batchService *services.BatchService) *ShopHandler {
	return &ShopHandler{
		batchService: batchService,
	}
}

// GET /shop/inventory
func (h *ShopHandler) Inventory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	status := c.Query("status")
	if status == "" {
		status = models.StatusInShop
	}

	result, err := h.batchService.GetMyBatches(userID, status, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /shop/sell
func (h *ShopHandler) Sell(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		BatchID    string  `json:"batch_id" binding:"required,uuid"`
		FinalPrice float64 `json:"final_price" binding:"required,gt=0"`
		ConsumerID string  `json:"consumer_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	batchID, _ := parseUUID(req.BatchID)

	sellReq := &services.SellToConsumerRequest{FinalPrice: req.FinalPrice}
	if req.ConsumerID != "" {
		consumerID, err := uuid.Parse(req.ConsumerID)
		if err != nil {
			utils.BadRequestResponse(c, "invalid consumer_id", nil)
			return
		}
		sellReq.ConsumerID = &consumerID
	}

	batch, err := h.batchService.SellToConsumer(userID, batchID, sellReq)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyBatchSold), gin.H{"batch": batch})
}
