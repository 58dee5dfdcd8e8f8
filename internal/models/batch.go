// internal/models/batch.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Batch is the core traceable unit. Quantities only ever decrease after
// creation; ownership moves as a single-field update inside a transaction.
// ParentBatchID nil means a root (harvest) batch; the parent/child graph
// is a forest.
type Batch struct {
	BaseModel
	BatchCode         string     `json:"batch_code" gorm:"uniqueIndex;size:64;not null"`
	ProductID         uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	ParentBatchID     *uuid.UUID `json:"parent_batch_id" gorm:"type:uuid;index"`
	CurrentOwnerID    uuid.UUID  `json:"current_owner_id" gorm:"type:uuid;not null;index"`
	CurrentStatusID   uuid.UUID  `json:"current_status_id" gorm:"type:uuid;not null;index"`
	InitialQuantity   float64    `json:"initial_quantity" gorm:"type:decimal(12,3);not null"`
	RemainingQuantity float64    `json:"remaining_quantity" gorm:"type:decimal(12,3);not null"`
	QuantityUnit      string     `json:"quantity_unit" gorm:"size:20;not null;default:'kg'"`
	UnitPrice         float64    `json:"unit_price" gorm:"type:decimal(12,2);not null;default:0"`
	HarvestDate       *time.Time `json:"harvest_date"`

	// Relationships
	Product       Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	ParentBatch   *Batch  `json:"parent_batch,omitempty" gorm:"foreignKey:ParentBatchID"`
	ChildBatches  []Batch `json:"child_batches,omitempty" gorm:"foreignKey:ParentBatchID"`
	CurrentOwner  User    `json:"current_owner,omitempty" gorm:"foreignKey:CurrentOwnerID"`
	CurrentStatus Status  `json:"current_status,omitempty" gorm:"foreignKey:CurrentStatusID"`
	Events        []Event `json:"events,omitempty" gorm:"foreignKey:BatchID"`
}
