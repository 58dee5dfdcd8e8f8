// internal/handlers/farmer.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrichain/agrichain-backend/internal/i18n"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

// FarmerHandler covers the grower surface: crop products, harvest batches,
// splits and field event logging with evidence.
type FarmerHandler struct {
	productService *services.ProductService
	batchService   *services.BatchService
	eventService   *services.EventService
}

func NewFarmerHandler(productService *services.ProductService, batchService *services.BatchService, eventService *services.EventService) *FarmerHandler {
	return &FarmerHandler{
		productService: productService,
		batchService:   batchService,
		eventService:   eventService,
	}
}

// POST /farmer/products
func (h *FarmerHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.CreateProduct(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyProductCreated), gin.H{"product": product})
}

// GET /farmer/products
func (h *FarmerHandler) GetMyProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.productService.GetMyProducts(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /farmer/add-batch
func (h *FarmerHandler) AddBatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	batch, err := h.batchService.CreateBatch(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyBatchCreated), gin.H{"batch": batch})
}

// GET /farmer/my-batches
func (h *FarmerHandler) GetMyBatches(c *gin.Context) {
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

// POST /farmer/log-event
func (h *FarmerHandler) LogEvent(c *gin.Context) {
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

// POST /farmer/events/:id/attachments
func (h *FarmerHandler) AddAttachment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	attachment, err := h.eventService.AddAttachment(userID, eventID, file, header, c.PostForm("caption"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyAttachmentAdded), gin.H{"attachment": attachment})
}

// POST /farmer/events/:id/device-data
func (h *FarmerHandler) AddDeviceData(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.DeviceDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	reading, err := h.eventService.AddDeviceData(userID, eventID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyDeviceDataAdded), gin.H{"device_data": reading})
}
