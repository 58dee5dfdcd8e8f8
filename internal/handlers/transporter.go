// internal/handlers/transporter.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// TransporterHandler covers in-transit jobs: finding loads, recording
// transport observations, and completing deliveries.
type TransporterHandler struct {
	batchService *services.BatchService
	eventService *services.EventService
}

func NewTransporterHandler(batchService *services.BatchService, eventService *services.EventService) *TransporterHandler {
	return &TransporterHandler{
		batchService: batchService,
		eventService: eventService,
	}
}

// GET /transporter/jobs
func (h *TransporterHandler) Jobs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	result, err := h.batchService.GetInTransitBatches(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /transporter/deliver
func (h *TransporterHandler) Deliver(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		BatchID        string `json:"batch_id" binding:"required,uuid"`
		ShopkeeperID   string `json:"shopkeeper_id" binding:"required,uuid"`
		LocationCoords string `json:"location_coords,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "batch_id and shopkeeper_id are required", err.Error())
		return
	}

	batchID, _ := parseUUID(req.BatchID)
	shopkeeperID, _ := parseUUID(req.ShopkeeperID)

	batch, err := h.batchService.DeliverBatch(userID, batchID, shopkeeperID, req.LocationCoords)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyBatchDelivered), gin.H{"batch": batch})
}

// POST /transporter/log-event
func (h *TransporterHandler) LogEvent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.LogEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	event, err := h.eventService.LogEvent(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyEventLogged), gin.H{"event": event})
}
