// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Event is an immutable lifecycle record. Events back-reference their batch
// and actor; they never control the batch's lifecycle.
type Event struct {
	BaseModel
	EventTypeID    uuid.UUID      `json:"event_type_id" gorm:"type:uuid;not null;index"`
	BatchID        uuid.UUID      `json:"batch_id" gorm:"type:uuid;not null;index"`
	ActorUserID    uuid.UUID      `json:"actor_user_id" gorm:"type:uuid;not null;index"`
	LocationCoords string         `json:"location_coords,omitempty" gorm:"size:100"`
	LedgerTxHash   string         `json:"ledger_tx_hash,omitempty" gorm:"size:66"`
	Details        JSONB          `json:"details,omitempty" gorm:"type:jsonb"`
	Tags           pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	RecordedAt     time.Time      `json:"recorded_at" gorm:"not null;index"`

	// Relationships
	EventType   EventType         `json:"event_type,omitempty" gorm:"foreignKey:EventTypeID"`
	Batch       Batch             `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	Actor       User              `json:"actor,omitempty" gorm:"foreignKey:ActorUserID"`
	Attachments []EventAttachment `json:"attachments,omitempty" gorm:"foreignKey:EventID"`
	DeviceData  []DeviceRawData   `json:"device_data,omitempty" gorm:"foreignKey:EventID"`
}

// EventAttachment is append-only evidence attached to an event.
type EventAttachment struct {
	BaseModel
	EventID  uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	FileURL  string    `json:"file_url" gorm:"size:512;not null"`
	FileKey  string    `json:"file_key" gorm:"size:255"`
	MimeType string    `json:"mime_type" gorm:"size:100"`
	Caption  string    `json:"caption,omitempty" gorm:"size:255"`
}

// DeviceRawData is an append-only IoT reading attached to an event.
type DeviceRawData struct {
	BaseModel
	EventID    uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	DeviceID   string    `json:"device_id" gorm:"size:100;not null"`
	Payload    JSONB     `json:"payload" gorm:"type:jsonb"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null"`
}

// ProductChainLog is a write-once query-acceleration row joining product,
// batch, event, and the batch status at the time of the event.
type ProductChainLog struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	BatchID   uuid.UUID `json:"batch_id" gorm:"type:uuid;not null;index"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	StatusID  uuid.UUID `json:"status_id" gorm:"type:uuid;not null"`
}
