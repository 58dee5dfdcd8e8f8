// internal/handlers/traceability.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// TraceabilityHandler serves the public consumer-facing story endpoints.
// No authentication: anyone with a batch code may read its history.
type TraceabilityHandler struct {
	traceService *services.TraceabilityService
	ledger       *services.LedgerService
}

func NewTraceabilityHandler(traceService *services.TraceabilityService, ledger *services.LedgerService) *TraceabilityHandler {
	return &TraceabilityHandler{
		traceService: traceService,
		ledger:       ledger,
	}
}

// GET /traceability/batch/:batch_code
func (h *TraceabilityHandler) TraceBatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	story, err := h.traceService.TraceByBatchCode(c.Param("batch_code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyTraceRetrieved), story)
}

// GET /traceability/batch/:batch_code/genealogy
func (h *TraceabilityHandler) Genealogy(c *gin.Context) {
	genealogy, err := h.traceService.GetGenealogy(c.Param("batch_code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "", genealogy)
}

// GET /traceability/batch/:batch_code/events
func (h *TraceabilityHandler) Events(c *gin.Context) {
	timeline, err := h.traceService.GetTimeline(c.Param("batch_code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "", gin.H{
		"events": timeline,
		"count":  len(timeline),
	})
}

// GET /traceability/product/:id/ledger
func (h *TraceabilityHandler) ProductLedger(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	records, err := h.ledger.GetProductLedger(productID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "", gin.H{
		"transactions": records,
		"count":        len(records),
	})
}
