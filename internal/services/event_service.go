// internal/services/event_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventNotLoggable = errors.New("event type cannot be logged directly")
)

// EventService records ad-hoc lifecycle events (fertilizer applications,
// quality checks, transport observations) against batches the actor owns or
// handles, plus their evidence attachments and IoT readings.
type EventService struct {
	db      *gorm.DB
	batches *BatchService
	storage *StorageService
}

type LogEventRequest struct {
	BatchID        uuid.UUID              `json:"batch_id" validate:"required"`
	EventType      string                 `json:"event_type" validate:"required"`
	Details        map[string]interface{} `json:"details,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	LocationCoords string                 `json:"location_coords,omitempty"`
}

type DeviceDataRequest struct {
	DeviceID   string                 `json:"device_id" validate:"required"`
	Payload    map[string]interface{} `json:"payload" validate:"required"`
	RecordedAt *time.Time             `json:"recorded_at,omitempty"`
}

// loggableEventTypes are the event kinds actors may record directly. State
// transitions (Split, Sold, Sale) are only ever written by the ledger
// operations themselves.
var loggableEventTypes = map[string]bool{
	models.EventChemical:          true,
	models.EventHarvestLog:        true,
	models.EventFertilizerApplied: true,
	models.EventPesticideApplied:  true,
	models.EventIrrigation:        true,
	models.EventQualityCheck:      true,
	models.EventTransportStart:    true,
	models.EventTransportEnd:      true,
}

var transportEventTypes = map[string]bool{
	models.EventTransportStart: true,
	models.EventTransportEnd:   true,
}

// canLogEvent reports whether the actor may record the event against the
// batch. Owners may log any loggable type; transport observations are also
// open to other actors while the batch is in transit.
func canLogEvent(eventType string, ownerID, actorID uuid.UUID, statusName string) bool {
	if ownerID == actorID {
		return true
	}
	return transportEventTypes[eventType] && statusName == models.StatusInTransit
}

func NewEventService(db *gorm.DB, batches *BatchService, storage *StorageService) *EventService {
	return &EventService{
		db:      db,
		batches: batches,
		storage: storage,
	}
}

func (s *EventService) LogEvent(actorID uuid.UUID, req *LogEventRequest) (*models.Event, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !loggableEventTypes[req.EventType] {
		return nil, fmt.Errorf("event type %q: %w", req.EventType, ErrEventNotLoggable)
	}

	var event *models.Event

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.Preload("CurrentStatus").
			First(&batch, "id = ?", req.BatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to load batch: %w", err)
		}

		if !canLogEvent(req.EventType, batch.CurrentOwnerID, actorID, batch.CurrentStatus.Name) {
			return ErrNotOwner
		}

		var err error
		event, err = s.batches.appendEvent(tx, req.EventType, &batch, actorID, models.JSONB(req.Details), req.LocationCoords)
		if err != nil {
			return err
		}

		if len(req.Tags) > 0 {
			if err := tx.Model(event).Update("tags", pq.StringArray(req.Tags)).Error; err != nil {
				return fmt.Errorf("failed to tag event: %w", err)
			}
			event.Tags = pq.StringArray(req.Tags)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// AddAttachment uploads evidence to storage and links it to the event.
func (s *EventService) AddAttachment(actorID, eventID uuid.UUID, file multipart.File, header *multipart.FileHeader, caption string) (*models.EventAttachment, error) {
	var event models.Event
	if err := s.db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if event.ActorUserID != actorID {
		return nil, ErrNotOwner
	}

	result, err := s.storage.UploadFile(file, header, s.storage.EvidenceUploadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	attachment := &models.EventAttachment{
		EventID:  event.ID,
		FileURL:  result.URL,
		FileKey:  result.Key,
		MimeType: result.MimeType,
		Caption:  caption,
	}
	if err := s.db.Create(attachment).Error; err != nil {
		// Orphaned uploads are cleaned up immediately
		if delErr := s.storage.DeleteFile(result.Key); delErr != nil {
			return nil, fmt.Errorf("failed to save attachment: %w (cleanup also failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	return attachment, nil
}

// AddDeviceData appends a raw IoT reading to an event.
func (s *EventService) AddDeviceData(actorID, eventID uuid.UUID, req *DeviceDataRequest) (*models.DeviceRawData, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var event models.Event
	if err := s.db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if event.ActorUserID != actorID {
		return nil, ErrNotOwner
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	reading := &models.DeviceRawData{
		EventID:    event.ID,
		DeviceID:   req.DeviceID,
		Payload:    models.JSONB(req.Payload),
		RecordedAt: recordedAt,
	}
	if err := s.db.Create(reading).Error; err != nil {
		return nil, fmt.Errorf("failed to save device data: %w", err)
	}

	return reading, nil
}

// GetBatchEvents lists a batch's events oldest first with their evidence.
func (s *EventService) GetBatchEvents(batchID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := s.db.Where("batch_id = ?", batchID).
		Order("recorded_at ASC").
		Preload("EventType").
		Preload("Actor").
		Preload("Attachments").
		Preload("DeviceData").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}
