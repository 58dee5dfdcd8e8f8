// internal/services/commerce_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain-backend/internal/models"
)

func sellableBatch(code string, ownerID uuid.UUID, remaining float64) *models.Batch {
	return &models.Batch{
		BaseModel:         models.BaseModel{ID: uuid.New()},
		BatchCode:         code,
		CurrentOwnerID:    ownerID,
		InitialQuantity:   remaining,
		RemainingQuantity: remaining,
		QuantityUnit:      "kg",
	}
}

func TestValidateOrderItemsEmptyList(t *testing.T) {
	_, _, err := ValidateOrderItems(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestValidateOrderItemsMissingFields(t *testing.T) {
	seller := uuid.New()
	batch := sellableBatch("BAT-1", seller, 100)
	batches := map[uuid.UUID]*models.Batch{batch.ID: batch}

	cases := []OrderItemRequest{
		{BatchID: uuid.Nil, Quantity: 10, UnitPrice: 5},
		{BatchID: batch.ID, Quantity: 0, UnitPrice: 5},
		{BatchID: batch.ID, Quantity: -3, UnitPrice: 5},
		{BatchID: batch.ID, Quantity: 10, UnitPrice: -1},
	}

	for _, item := range cases {
		_, _, err := ValidateOrderItems([]OrderItemRequest{item}, batches)
		assert.ErrorIs(t, err, ErrInvalidOrderItem)
	}
}

func TestValidateOrderItemsBatchNotFound(t *testing.T) {
	_, _, err := ValidateOrderItems(
		[]OrderItemRequest{{BatchID: uuid.New(), Quantity: 10, UnitPrice: 5}},
		map[uuid.UUID]*models.Batch{},
	)
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestValidateOrderItemsInsufficientQuantity(t *testing.T) {
	seller := uuid.New()
	batch := sellableBatch("BAT-SHORT", seller, 25)
	batches := map[uuid.UUID]*models.Batch{batch.ID: batch}

	_, _, err := ValidateOrderItems(
		[]OrderItemRequest{{BatchID: batch.ID, Quantity: 40, UnitPrice: 5}},
		batches,
	)

	var qtyErr *InsufficientQuantityError
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, "BAT-SHORT", qtyErr.BatchCode)
	assert.Equal(t, 25.0, qtyErr.Available)
	assert.Equal(t, 40.0, qtyErr.Requested)
	assert.Contains(t, qtyErr.Error(), "available 25.000")
	assert.Contains(t, qtyErr.Error(), "requested 40.000")
}

func TestValidateOrderItemsDuplicateBatchLinesAccumulate(t *testing.T) {
	seller := uuid.New()
	batch := sellableBatch("BAT-DUP", seller, 100)
	batches := map[uuid.UUID]*models.Batch{batch.ID: batch}

	// Each line fits on its own but together they overdraw the batch
	_, _, err := ValidateOrderItems([]OrderItemRequest{
		{BatchID: batch.ID, Quantity: 60, UnitPrice: 5},
		{BatchID: batch.ID, Quantity: 60, UnitPrice: 5},
	}, batches)

	var qtyErr *InsufficientQuantityError
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, "BAT-DUP", qtyErr.BatchCode)
	assert.Equal(t, 100.0, qtyErr.Available)
	assert.Equal(t, 120.0, qtyErr.Requested)
}

func TestValidateOrderItemsDuplicateBatchLinesWithinRemaining(t *testing.T) {
	seller := uuid.New()
	batch := sellableBatch("BAT-DUP", seller, 100)
	batches := map[uuid.UUID]*models.Batch{batch.ID: batch}

	sellerID, total, err := ValidateOrderItems([]OrderItemRequest{
		{BatchID: batch.ID, Quantity: 60, UnitPrice: 5},
		{BatchID: batch.ID, Quantity: 40, UnitPrice: 5},
	}, batches)

	require.NoError(t, err)
	assert.Equal(t, seller, sellerID)
	assert.Equal(t, 500.0, total)
}

func TestValidateOrderItemsMixedSellersRejected(t *testing.T) {
	batchA := sellableBatch("BAT-A", uuid.New(), 100)
	batchB := sellableBatch("BAT-B", uuid.New(), 100)
	batches := map[uuid.UUID]*models.Batch{
		batchA.ID: batchA,
		batchB.ID: batchB,
	}

	_, _, err := ValidateOrderItems([]OrderItemRequest{
		{BatchID: batchA.ID, Quantity: 10, UnitPrice: 5},
		{BatchID: batchB.ID, Quantity: 10, UnitPrice: 5},
	}, batches)

	assert.ErrorIs(t, err, ErrMixedSellers)
}

func TestValidateOrderItemsTotalAndSeller(t *testing.T) {
	seller := uuid.New()
	batchA := sellableBatch("BAT-A", seller, 100)
	batchB := sellableBatch("BAT-B", seller, 50)
	batches := map[uuid.UUID]*models.Batch{
		batchA.ID: batchA,
		batchB.ID: batchB,
	}

	sellerID, total, err := ValidateOrderItems([]OrderItemRequest{
		{BatchID: batchA.ID, Quantity: 10, UnitPrice: 4},
		{BatchID: batchB.ID, Quantity: 5, UnitPrice: 6},
	}, batches)

	require.NoError(t, err)
	assert.Equal(t, seller, sellerID)
	assert.Equal(t, 70.0, total)
}

func TestValidateOrderItemsExactRemaining(t *testing.T) {
	seller := uuid.New()
	batch := sellableBatch("BAT-EXACT", seller, 30)
	batches := map[uuid.UUID]*models.Batch{batch.ID: batch}

	_, total, err := ValidateOrderItems(
		[]OrderItemRequest{{BatchID: batch.ID, Quantity: 30, UnitPrice: 2}},
		batches,
	)

	require.NoError(t, err)
	assert.Equal(t, 60.0, total)
}
