// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleFarmer      UserRole = "FARMER"
	RoleDistributor UserRole = "DISTRIBUTOR"
	RoleTransporter UserRole = "TRANSPORTER"
	RoleShopkeeper  UserRole = "SHOPKEEPER"
	RoleConsumer    UserRole = "CONSUMER"
)

func ValidRole(r UserRole) bool {
	switch r {
	case RoleFarmer, RoleDistributor, RoleTransporter, RoleShopkeeper, RoleConsumer:
		return true
	}
	return false
}

// Batch status names seeded into the statuses taxonomy table. Ledger
// transactions resolve these by name inside the active transaction; a
// missing row is a configuration error, never a silent default.
const (
	StatusHarvested   = "Harvested"
	StatusProcessing  = "Processing"
	StatusInWarehouse = "In Warehouse"
	StatusInTransit   = "In Transit"
	StatusInShop      = "In Shop"
	StatusSold        = "Sold"
)

// Event type names seeded into the event_types taxonomy table.
const (
	EventHarvest           = "Harvest"
	EventChemical          = "Chemical"
	EventHarvestLog        = "Harvest Log"
	EventFertilizerApplied = "Fertilizer Applied"
	EventPesticideApplied  = "Pesticide Applied"
	EventIrrigation        = "Irrigation"
	EventQualityCheck      = "Quality Check"
	EventSplit             = "Split"
	EventSold              = "Sold"
	EventTransportStart    = "Transport Start"
	EventTransportEnd      = "Transport End"
	EventSale              = "Sale"
)

type WalletDirection string

const (
	WalletDebit  WalletDirection = "debit"
	WalletCredit WalletDirection = "credit"
)
