// internal/services/batch_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain-backend/internal/models"
)

func TestValidateSplitRequestEmptyList(t *testing.T) {
	_, err := ValidateSplitRequest(100, nil)
	assert.ErrorIs(t, err, ErrEmptySplitList)

	_, err = ValidateSplitRequest(100, []SplitItem{})
	assert.ErrorIs(t, err, ErrEmptySplitList)
}

func TestValidateSplitRequestNonPositiveQuantity(t *testing.T) {
	_, err := ValidateSplitRequest(100, []SplitItem{{Quantity: 0}})
	assert.ErrorIs(t, err, ErrEmptySplitList)

	_, err = ValidateSplitRequest(100, []SplitItem{{Quantity: 50}, {Quantity: -10}})
	assert.ErrorIs(t, err, ErrEmptySplitList)
}

func TestValidateSplitRequestExceedsRemaining(t *testing.T) {
	_, err := ValidateSplitRequest(100, []SplitItem{{Quantity: 60}, {Quantity: 50}})
	assert.ErrorIs(t, err, ErrQuantityExceeded)
}

func TestValidateSplitRequestExactRemaining(t *testing.T) {
	total, err := ValidateSplitRequest(100, []SplitItem{{Quantity: 60}, {Quantity: 40}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)
}

func TestValidateSplitRequestPartial(t *testing.T) {
	total, err := ValidateSplitRequest(100, []SplitItem{{Quantity: 25.5}, {Quantity: 10}})
	require.NoError(t, err)
	assert.Equal(t, 35.5, total)
}

func TestValidateSplitRequestSerializedCompetingSplits(t *testing.T) {
	// Two splits racing for the same parent serialize on the row lock.
	// The first consumes quantity; the second re-validates against what
	// is left and loses.
	remaining := 100.0

	consumed, err := ValidateSplitRequest(remaining, []SplitItem{{Quantity: 60}})
	require.NoError(t, err)
	remaining -= consumed

	_, err = ValidateSplitRequest(remaining, []SplitItem{{Quantity: 60}})
	assert.ErrorIs(t, err, ErrQuantityExceeded)
}

func TestValidateDelivery(t *testing.T) {
	shopkeeper := &models.User{Role: models.RoleShopkeeper}
	farmer := &models.User{Role: models.RoleFarmer}

	assert.NoError(t, validateDelivery(models.StatusInTransit, shopkeeper))
	assert.ErrorIs(t, validateDelivery(models.StatusInWarehouse, shopkeeper), ErrWrongStatus)
	assert.ErrorIs(t, validateDelivery(models.StatusInTransit, farmer), ErrNotShopkeeper)
}

func TestValidateShopSaleRequiresCustody(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	assert.NoError(t, validateShopSale(models.StatusInShop, owner, owner))
	assert.ErrorIs(t, validateShopSale(models.StatusInShop, owner, stranger), ErrNotOwner)
	assert.ErrorIs(t, validateShopSale(models.StatusInTransit, owner, owner), ErrWrongStatus)
}
