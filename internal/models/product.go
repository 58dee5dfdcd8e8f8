// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the named crop template a farmer harvests batches against.
type Product struct {
	BaseModel
	FarmerID       uuid.UUID      `json:"farmer_id" gorm:"type:uuid;not null;index"`
	Title          string         `json:"title" gorm:"size:255;not null"`
	CropDetails    string         `json:"crop_details" gorm:"type:text"`
	Certifications pq.StringArray `json:"certifications" gorm:"type:text[]"`

	// Relationships
	Farmer  User    `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Batches []Batch `json:"batches,omitempty" gorm:"foreignKey:ProductID"`
}

// Status is a reference taxonomy row for batch lifecycle states.
type Status struct {
	BaseModel
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`
}

// EventType is a reference taxonomy row for lifecycle event kinds.
type EventType struct {
	BaseModel
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`
}
