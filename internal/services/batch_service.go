// internal/services/batch_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

var (
	ErrBatchNotFound     = errors.New("batch not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrNotOwner          = errors.New("caller does not own this resource")
	ErrWrongStatus       = errors.New("batch is not in the required status")
	ErrQuantityExhausted = errors.New("batch quantity is exhausted")
	ErrQuantityExceeded  = errors.New("requested quantity exceeds remaining quantity")
	ErrEmptySplitList    = errors.New("split list is empty or invalid")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotShopkeeper     = errors.New("delivery target is not a shopkeeper")
)

// ErrTaxonomyMissing marks a missing status or event-type seed row. It is a
// deployment fault, not a client error.
var ErrTaxonomyMissing = errors.New("taxonomy row missing")

type BatchService struct {
	db     *gorm.DB
	wallet *WalletService
	ledger *LedgerService
}

type CreateBatchRequest struct {
	ProductID       uuid.UUID  `json:"product_id" validate:"required"`
	InitialQuantity float64    `json:"initial_quantity" validate:"required,gt=0"`
	QuantityUnit    string     `json:"quantity_unit" validate:"omitempty,quantity_unit"`
	UnitPrice       float64    `json:"unit_price" validate:"omitempty,gte=0"`
	HarvestDate     *time.Time `json:"harvest_date,omitempty"`
	LocationCoords  string     `json:"location_coords,omitempty"`
}

type SplitItem struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type SplitBatchRequest struct {
	Splits []SplitItem `json:"splits"`
}

type ShipBatchRequest struct {
	LocationCoords string `json:"location_coords,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type SellToConsumerRequest struct {
	FinalPrice float64    `json:"final_price" validate:"required,gt=0"`
	ConsumerID *uuid.UUID `json:"consumer_id,omitempty"`
}

func NewBatchService(db *gorm.DB, wallet *WalletService, ledger *LedgerService) *BatchService {
	return &BatchService{
		db:     db,
		wallet: wallet,
		ledger: ledger,
	}
}

// statusID resolves a status taxonomy row by name inside the active
// transaction. A missing row is a configuration error.
func statusID(tx *gorm.DB, name string) (uuid.UUID, error) {
	var status models.Status
	if err := tx.Where("name = ?", name).First(&status).Error; err != nil {
		return uuid.Nil, fmt.Errorf("status %q: %w: %v", name, ErrTaxonomyMissing, err)
	}
	return status.ID, nil
}

func eventTypeID(tx *gorm.DB, name string) (uuid.UUID, error) {
	var eventType models.EventType
	if err := tx.Where("name = ?", name).First(&eventType).Error; err != nil {
		return uuid.Nil, fmt.Errorf("event type %q: %w: %v", name, ErrTaxonomyMissing, err)
	}
	return eventType.ID, nil
}

// appendEvent writes the lifecycle event and its chain-log row for a batch,
// mirroring the event hash onto the simulated ledger first.
func (s *BatchService) appendEvent(tx *gorm.DB, typeName string, batch *models.Batch, actorID uuid.UUID, details models.JSONB, location string) (*models.Event, error) {
	typeID, err := eventTypeID(tx, typeName)
	if err != nil {
		return nil, err
	}

	hash := s.ledger.MirrorEvent(typeName, batch.ID, actorID, details)

	event := &models.Event{
		EventTypeID:    typeID,
		BatchID:        batch.ID,
		ActorUserID:    actorID,
		LocationCoords: location,
		LedgerTxHash:   hash,
		Details:        details,
		RecordedAt:     time.Now(),
	}
	if err := tx.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	chainLog := &models.ProductChainLog{
		ProductID: batch.ProductID,
		BatchID:   batch.ID,
		EventID:   event.ID,
		StatusID:  batch.CurrentStatusID,
	}
	if err := tx.Create(chainLog).Error; err != nil {
		return nil, fmt.Errorf("failed to create chain log: %w", err)
	}

	return event, nil
}

// CreateBatch registers a harvest. The batch, its Harvest event and the
// chain-log row commit together or not at all.
func (s *BatchService) CreateBatch(farmerID uuid.UUID, req *CreateBatchRequest) (*models.Batch, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.FarmerID != farmerID {
		return nil, ErrNotOwner
	}

	batchCode, err := utils.GenerateBatchCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate batch code: %w", err)
	}

	unit := req.QuantityUnit
	if unit == "" {
		unit = "kg"
	}

	var batch *models.Batch
	err = s.db.Transaction(func(tx *gorm.DB) error {
		harvestedID, err := statusID(tx, models.StatusHarvested)
		if err != nil {
			return err
		}

		batch = &models.Batch{
			BatchCode:         batchCode,
			ProductID:         product.ID,
			CurrentOwnerID:    farmerID,
			CurrentStatusID:   harvestedID,
			InitialQuantity:   req.InitialQuantity,
			RemainingQuantity: req.InitialQuantity,
			QuantityUnit:      unit,
			UnitPrice:         req.UnitPrice,
			HarvestDate:       req.HarvestDate,
		}
		if err := tx.Create(batch).Error; err != nil {
			return fmt.Errorf("failed to create batch: %w", err)
		}

		details := models.JSONB{
			"batch_code": batchCode,
			"quantity":   req.InitialQuantity,
			"unit":       unit,
		}
		if _, err := s.appendEvent(tx, models.EventHarvest, batch, farmerID, details, req.LocationCoords); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// ValidateSplitRequest checks a split list against the quantity still held
// by the parent. Returns the total quantity being split off.
func ValidateSplitRequest(remaining float64, splits []SplitItem) (float64, error) {
	if len(splits) == 0 {
		return 0, ErrEmptySplitList
	}

	var total float64
	for _, item := range splits {
		if item.Quantity <= 0 {
			return 0, ErrEmptySplitList
		}
		total += item.Quantity
	}

	if total > remaining {
		return 0, ErrQuantityExceeded
	}

	return total, nil
}

// SplitBatch carves child batches off a parent under an exclusive row lock.
// The lock serializes concurrent splits so the parent can never be split
// past its remaining quantity.
func (s *BatchService) SplitBatch(ownerID, parentID uuid.UUID, req *SplitBatchRequest) ([]models.Batch, error) {
	var children []models.Batch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var parent models.Batch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&parent, "id = ?", parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}

		if parent.CurrentOwnerID != ownerID {
			return ErrNotOwner
		}

		// Re-validate under the lock; a concurrent split may have already
		// consumed quantity this request was counting on.
		total, err := ValidateSplitRequest(parent.RemainingQuantity, req.Splits)
		if err != nil {
			return err
		}

		processingID, err := statusID(tx, models.StatusProcessing)
		if err != nil {
			return err
		}

		for _, item := range req.Splits {
			childCode, err := utils.GenerateBatchCode()
			if err != nil {
				return fmt.Errorf("failed to generate batch code: %w", err)
			}

			unit := item.Unit
			if unit == "" {
				unit = parent.QuantityUnit
			}

			child := models.Batch{
				BatchCode:         childCode,
				ProductID:         parent.ProductID,
				ParentBatchID:     &parent.ID,
				CurrentOwnerID:    ownerID,
				CurrentStatusID:   processingID,
				InitialQuantity:   item.Quantity,
				RemainingQuantity: item.Quantity,
				QuantityUnit:      unit,
				UnitPrice:         parent.UnitPrice,
				HarvestDate:       parent.HarvestDate,
			}
			if err := tx.Create(&child).Error; err != nil {
				return fmt.Errorf("failed to create child batch: %w", err)
			}

			details := models.JSONB{
				"parent_batch_code": parent.BatchCode,
				"child_batch_code":  childCode,
				"quantity":          item.Quantity,
				"unit":              unit,
			}
			if _, err := s.appendEvent(tx, models.EventSplit, &child, ownerID, details, ""); err != nil {
				return err
			}

			children = append(children, child)
		}

		updates := map[string]interface{}{
			"remaining_quantity": parent.RemainingQuantity - total,
		}
		if parent.RemainingQuantity-total <= 0 {
			warehouseID, err := statusID(tx, models.StatusInWarehouse)
			if err != nil {
				return err
			}
			updates["current_status_id"] = warehouseID
		}
		if err := tx.Model(&parent).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update parent batch: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return children, nil
}

// BuyBatch transfers a whole Harvested batch to the buyer. The batch lock,
// both wallet movements, the Sold event and the chain log are one
// transaction.
func (s *BatchService) BuyBatch(buyerID, batchID uuid.UUID) (*models.Batch, error) {
	var batch models.Batch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("CurrentStatus").
			First(&batch, "id = ?", batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}

		if batch.CurrentStatus.Name != models.StatusHarvested {
			return ErrWrongStatus
		}
		if batch.RemainingQuantity <= 0 {
			return ErrQuantityExhausted
		}

		sellerID := batch.CurrentOwnerID
		price := batch.UnitPrice * batch.RemainingQuantity

		if price > 0 {
			ref := "batch:" + batch.BatchCode
			if err := s.wallet.Debit(tx, buyerID, price, ref, "Purchase of batch "+batch.BatchCode); err != nil {
				return err
			}
			if err := s.wallet.Credit(tx, sellerID, price, ref, "Sale of batch "+batch.BatchCode); err != nil {
				return err
			}
		}

		warehouseID, err := statusID(tx, models.StatusInWarehouse)
		if err != nil {
			return err
		}

		if err := tx.Model(&batch).Updates(map[string]interface{}{
			"current_owner_id":  buyerID,
			"current_status_id": warehouseID,
		}).Error; err != nil {
			return fmt.Errorf("failed to transfer batch: %w", err)
		}
		batch.CurrentOwnerID = buyerID
		batch.CurrentStatusID = warehouseID

		details := models.JSONB{
			"batch_code": batch.BatchCode,
			"seller_id":  sellerID.String(),
			"buyer_id":   buyerID.String(),
			"price":      price,
		}
		if _, err := s.appendEvent(tx, models.EventSold, &batch, buyerID, details, ""); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// GetMarketplace lists Harvested batches with quantity left, newest first.
func (s *BatchService) GetMarketplace(params utils.PaginationParams) (*utils.PaginationResult, error) {
	var batches []models.Batch
	var total int64

	query := s.db.Model(&models.Batch{}).
		Joins("JOIN statuses ON statuses.id = batches.current_status_id").
		Where("statuses.name = ? AND batches.remaining_quantity > 0", models.StatusHarvested)

	query.Count(&total)

	err := utils.ApplyPagination(query.Order("batches.created_at DESC"), params).
		Preload("Product").
		Preload("CurrentOwner").
		Preload("CurrentStatus").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace: %w", err)
	}

	result := utils.CreatePaginationResult(batches, total, params)
	return &result, nil
}

// GetMyBatches lists the caller's batches, optionally filtered by status
// name.
func (s *BatchService) GetMyBatches(ownerID uuid.UUID, statusName string, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var batches []models.Batch
	var total int64

	query := s.db.Model(&models.Batch{}).Where("batches.current_owner_id = ?", ownerID)
	if statusName != "" {
		query = query.
			Joins("JOIN statuses ON statuses.id = batches.current_status_id").
			Where("statuses.name = ?", statusName)
	}

	query.Count(&total)

	err := utils.ApplyPagination(query.Order("batches.created_at DESC"), params).
		Preload("Product").
		Preload("CurrentStatus").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}

	result := utils.CreatePaginationResult(batches, total, params)
	return &result, nil
}

// GetInTransitBatches lists batches a transporter can act on.
func (s *BatchService) GetInTransitBatches(params utils.PaginationParams) (*utils.PaginationResult, error) {
	var batches []models.Batch
	var total int64

	query := s.db.Model(&models.Batch{}).
		Joins("JOIN statuses ON statuses.id = batches.current_status_id").
		Where("statuses.name = ?", models.StatusInTransit)

	query.Count(&total)

	err := utils.ApplyPagination(query.Order("batches.updated_at DESC"), params).
		Preload("Product").
		Preload("CurrentOwner").
		Preload("CurrentStatus").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load in-transit batches: %w", err)
	}

	result := utils.CreatePaginationResult(batches, total, params)
	return &result, nil
}

// shipReadyStatuses are the states a batch may be shipped from.
var shipReadyStatuses = map[string]bool{
	models.StatusInWarehouse: true,
	models.StatusProcessing:  true,
}

// ShipBatch moves an owned, warehouse-ready batch into transit.
func (s *BatchService) ShipBatch(ownerID, batchID uuid.UUID, req *ShipBatchRequest) (*models.Batch, error) {
	var batch models.Batch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("CurrentStatus").
			First(&batch, "id = ?", batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}

		if batch.CurrentOwnerID != ownerID {
			return ErrNotOwner
		}
		if !shipReadyStatuses[batch.CurrentStatus.Name] {
			return ErrWrongStatus
		}

		transitID, err := statusID(tx, models.StatusInTransit)
		if err != nil {
			return err
		}

		if err := tx.Model(&batch).Update("current_status_id", transitID).Error; err != nil {
			return fmt.Errorf("failed to update batch status: %w", err)
		}
		batch.CurrentStatusID = transitID

		details := models.JSONB{"batch_code": batch.BatchCode}
		if req.Notes != "" {
			details["notes"] = req.Notes
		}
		if _, err := s.appendEvent(tx, models.EventTransportStart, &batch, ownerID, details, req.LocationCoords); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// validateDelivery checks that the batch is in transit and that the
// receiving user runs a shop.
func validateDelivery(statusName string, target *models.User) error {
	if statusName != models.StatusInTransit {
		return ErrWrongStatus
	}
	if target.Role != models.RoleShopkeeper {
		return ErrNotShopkeeper
	}
	return nil
}

// DeliverBatch moves an in-transit batch into the named shopkeeper's shop.
// Any transporter may complete the delivery; custody passes to the
// shopkeeper and the actor is recorded on the Transport End event.
func (s *BatchService) DeliverBatch(actorID, batchID, shopkeeperID uuid.UUID, location string) (*models.Batch, error) {
	var batch models.Batch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("CurrentStatus").
			First(&batch, "id = ?", batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}

		var target models.User
		if err := tx.First(&target, "id = ?", shopkeeperID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load shopkeeper: %w", err)
		}

		if err := validateDelivery(batch.CurrentStatus.Name, &target); err != nil {
			return err
		}

		shopID, err := statusID(tx, models.StatusInShop)
		if err != nil {
			return err
		}

		if err := tx.Model(&batch).Updates(map[string]interface{}{
			"current_status_id": shopID,
			"current_owner_id":  shopkeeperID,
		}).Error; err != nil {
			return fmt.Errorf("failed to update batch: %w", err)
		}
		batch.CurrentStatusID = shopID
		batch.CurrentOwnerID = shopkeeperID

		details := models.JSONB{
			"batch_code":    batch.BatchCode,
			"shopkeeper_id": shopkeeperID.String(),
		}
		if _, err := s.appendEvent(tx, models.EventTransportEnd, &batch, actorID, details, location); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// validateShopSale checks the batch sits in the calling shopkeeper's shop.
func validateShopSale(statusName string, ownerID, shopkeeperID uuid.UUID) error {
	if statusName != models.StatusInShop {
		return ErrWrongStatus
	}
	if ownerID != shopkeeperID {
		return ErrNotOwner
	}
	return nil
}

// SellToConsumer records the final retail sale of a batch the shopkeeper
// holds. If a registered consumer is named, the price moves through the
// wallets and ownership transfers; otherwise the sale is a cash sale
// credited to the shopkeeper.
func (s *BatchService) SellToConsumer(shopkeeperID, batchID uuid.UUID, req *SellToConsumerRequest) (*models.Batch, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var batch models.Batch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("CurrentStatus").
			First(&batch, "id = ?", batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}

		if err := validateShopSale(batch.CurrentStatus.Name, batch.CurrentOwnerID, shopkeeperID); err != nil {
			return err
		}

		ref := "sale:" + batch.BatchCode
		if req.ConsumerID != nil {
			if err := s.wallet.Debit(tx, *req.ConsumerID, req.FinalPrice, ref, "Purchase of batch "+batch.BatchCode); err != nil {
				return err
			}
		}
		if err := s.wallet.Credit(tx, shopkeeperID, req.FinalPrice, ref, "Retail sale of batch "+batch.BatchCode); err != nil {
			return err
		}

		soldID, err := statusID(tx, models.StatusSold)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"current_status_id": soldID}
		if req.ConsumerID != nil {
			updates["current_owner_id"] = *req.ConsumerID
		}
		if err := tx.Model(&batch).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update batch: %w", err)
		}
		batch.CurrentStatusID = soldID
		if req.ConsumerID != nil {
			batch.CurrentOwnerID = *req.ConsumerID
		}

		details := models.JSONB{
			"batch_code":  batch.BatchCode,
			"final_price": req.FinalPrice,
		}
		if req.ConsumerID != nil {
			details["consumer_id"] = req.ConsumerID.String()
		}
		if _, err := s.appendEvent(tx, models.EventSale, &batch, shopkeeperID, details, ""); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// GetBatch loads a single batch with its product, owner and status.
func (s *BatchService) GetBatch(batchID uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	err := s.db.Preload("Product").
		Preload("CurrentOwner").
		Preload("CurrentStatus").
		First(&batch, "id = ?", batchID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	return &batch, nil
}
