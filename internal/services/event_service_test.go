// internal/services/event_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/agrichain/agrichain-backend/internal/models"
)

func TestCanLogEventOwner(t *testing.T) {
	owner := uuid.New()

	assert.True(t, canLogEvent(models.EventFertilizerApplied, owner, owner, models.StatusHarvested))
	assert.True(t, canLogEvent(models.EventTransportStart, owner, owner, models.StatusInWarehouse))
}

func TestCanLogEventRejectsNonOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	assert.False(t, canLogEvent(models.EventChemical, owner, stranger, models.StatusHarvested))
	assert.False(t, canLogEvent(models.EventQualityCheck, owner, stranger, models.StatusInShop))
}

func TestCanLogEventTransportObservations(t *testing.T) {
	owner := uuid.New()
	transporter := uuid.New()

	// In-transit batches take transport observations from any actor
	assert.True(t, canLogEvent(models.EventTransportStart, owner, transporter, models.StatusInTransit))
	assert.True(t, canLogEvent(models.EventTransportEnd, owner, transporter, models.StatusInTransit))

	assert.False(t, canLogEvent(models.EventTransportStart, owner, transporter, models.StatusHarvested))
	assert.False(t, canLogEvent(models.EventIrrigation, owner, transporter, models.StatusInTransit))
}
