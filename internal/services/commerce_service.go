// internal/services/commerce_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

var (
	ErrEmptyOrder       = errors.New("order has no items")
	ErrInvalidOrderItem = errors.New("order item is missing required fields")
	ErrMixedSellers     = errors.New("order items must belong to a single seller")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotParticipant   = errors.New("caller is not a participant in this order")
)

// InsufficientQuantityError reports how much of a batch was available
// against how much the order asked for.
type InsufficientQuantityError struct {
	BatchCode string
	Available float64
	Requested float64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for batch %s (available %.3f, requested %.3f)",
		e.BatchCode, e.Available, e.Requested)
}

type CommerceService struct {
	db      *gorm.DB
	wallet  *WalletService
	batches *BatchService
}

type OrderItemRequest struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

func NewCommerceService(db *gorm.DB, wallet *WalletService, batches *BatchService) *CommerceService {
	return &CommerceService{
		db:      db,
		wallet:  wallet,
		batches: batches,
	}
}

// ValidateOrderItems checks every line item against the locked batch rows
// and returns the single seller and the order total. Lines naming the same
// batch draw down the same remaining quantity, so their sum is what gets
// checked. Orders spanning more than one seller are rejected.
func ValidateOrderItems(items []OrderItemRequest, batchesByID map[uuid.UUID]*models.Batch) (uuid.UUID, float64, error) {
	if len(items) == 0 {
		return uuid.Nil, 0, ErrEmptyOrder
	}

	var sellerID uuid.UUID
	var total float64
	requested := make(map[uuid.UUID]float64, len(items))

	for _, item := range items {
		if item.BatchID == uuid.Nil || item.Quantity <= 0 || item.UnitPrice < 0 {
			return uuid.Nil, 0, ErrInvalidOrderItem
		}

		batch, ok := batchesByID[item.BatchID]
		if !ok {
			return uuid.Nil, 0, ErrBatchNotFound
		}

		requested[item.BatchID] += item.Quantity
		if requested[item.BatchID] > batch.RemainingQuantity {
			return uuid.Nil, 0, &InsufficientQuantityError{
				BatchCode: batch.BatchCode,
				Available: batch.RemainingQuantity,
				Requested: requested[item.BatchID],
			}
		}

		if sellerID == uuid.Nil {
			sellerID = batch.CurrentOwnerID
		} else if sellerID != batch.CurrentOwnerID {
			return uuid.Nil, 0, ErrMixedSellers
		}

		total += item.Quantity * item.UnitPrice
	}

	return sellerID, total, nil
}

// CreateOrder executes an all-or-nothing multi-batch purchase. Every
// referenced batch row is locked in one statement so two concurrent orders
// against overlapping batches serialize without deadlocking, and the loser
// re-validates against the winner's committed quantities.
func (s *CommerceService) CreateOrder(buyerID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// De-duplicate batch ids for the lock statement
	idSet := make(map[uuid.UUID]bool, len(req.Items))
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if item.BatchID == uuid.Nil {
			return nil, ErrInvalidOrderItem
		}
		if !idSet[item.BatchID] {
			idSet[item.BatchID] = true
			ids = append(ids, item.BatchID)
		}
	}

	orderNumber, err := utils.GenerateOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	var order *models.Order

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var lockedBatches []models.Batch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Find(&lockedBatches).Error; err != nil {
			return fmt.Errorf("failed to lock batches: %w", err)
		}
		if len(lockedBatches) != len(ids) {
			return ErrBatchNotFound
		}

		batchesByID := make(map[uuid.UUID]*models.Batch, len(lockedBatches))
		for i := range lockedBatches {
			batchesByID[lockedBatches[i].ID] = &lockedBatches[i]
		}

		sellerID, total, err := ValidateOrderItems(req.Items, batchesByID)
		if err != nil {
			return err
		}

		if total > 0 {
			if err := s.wallet.Debit(tx, buyerID, total, orderNumber, "Order "+orderNumber); err != nil {
				return err
			}
			if err := s.wallet.Credit(tx, sellerID, total, orderNumber, "Order "+orderNumber); err != nil {
				return err
			}
		}

		order = &models.Order{
			OrderNumber: orderNumber,
			BuyerID:     buyerID,
			SellerID:    sellerID,
			TotalAmount: total,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		soldID, err := statusID(tx, models.StatusSold)
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			batch := batchesByID[item.BatchID]

			newRemaining := batch.RemainingQuantity - item.Quantity
			updates := map[string]interface{}{"remaining_quantity": newRemaining}
			if newRemaining <= 0 {
				updates["current_status_id"] = soldID
			}
			if err := tx.Model(batch).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to decrement batch quantity: %w", err)
			}
			batch.RemainingQuantity = newRemaining
			if newRemaining <= 0 {
				batch.CurrentStatusID = soldID
			}

			orderItem := &models.OrderItem{
				OrderID:   order.ID,
				BatchID:   batch.ID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if err := tx.Create(orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			details := models.JSONB{
				"order_number": orderNumber,
				"batch_code":   batch.BatchCode,
				"quantity":     item.Quantity,
				"unit_price":   item.UnitPrice,
			}
			if _, err := s.batches.appendEvent(tx, models.EventSold, batch, buyerID, details, ""); err != nil {
				return err
			}
		}

		if err := tx.Model(order).Update("is_completed", true).Error; err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}
		order.IsCompleted = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetMyOrders lists orders the user participates in as buyer or seller.
func (s *CommerceService) GetMyOrders(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var orders []models.Order
	var total int64

	query := s.db.Model(&models.Order{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)

	query.Count(&total)

	err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Preload("Items").
		Preload("Items.Batch").
		Preload("Buyer").
		Preload("Seller").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

// GetOrder returns an order to its buyer or seller only.
func (s *CommerceService) GetOrder(userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Preload("Items.Batch").
		Preload("Buyer").
		Preload("Seller").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if order.BuyerID != userID && order.SellerID != userID {
		return nil, ErrNotParticipant
	}

	return &order, nil
}
