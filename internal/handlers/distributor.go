// internal/handlers/distributor.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// DistributorHandler covers buying harvested batches off the marketplace,
// splitting them for resale, and dispatching them to shops.
type DistributorHandler struct {
	batchService *services.BatchService
}

func NewDistributorHandler(batchService *services.BatchService) *DistributorHandler {
	return &DistributorHandler{
		batchService: batchService,
	}
}

// GET /distributor/marketplace
func (h *DistributorHandler) Marketplace(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	result, err := h.batchService.GetMarketplace(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /distributor/buy
func (h *DistributorHandler) Buy(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		BatchID string `json:"batch_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "batch_id is required", err.Error())
		return
	}

	batchID, _ := parseUUID(req.BatchID)

	batch, err := h.batchService.BuyBatch(userID, batchID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyBatchPurchased), gin.H{"batch": batch})
}

// POST /distributor/batches/:id/split
func (h *DistributorHandler) Split(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SplitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	children, err := h.batchService.SplitBatch(userID, batchID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyBatchSplit), gin.H{"batches": children})
}

// GET /distributor/inventory
func (h *DistributorHandler) Inventory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.batchService.GetMyBatches(userID, c.Query("status"), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /distributor/ship
func (h *DistributorHandler) Ship(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		BatchID        string `json:"batch_id" binding:"required,uuid"`
		LocationCoords string `json:"location_coords,omitempty"`
		Notes          string `json:"notes,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "batch_id is required", err.Error())
		return
	}

	batchID, _ := parseUUID(req.BatchID)

	batch, err := h.batchService.ShipBatch(userID, batchID, &services.ShipBatchRequest{
		LocationCoords: req.LocationCoords,
		Notes:          req.Notes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyBatchShipped), gin.H{"batch": batch})
}
