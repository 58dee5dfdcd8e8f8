// internal/models/wallet.go
package models

import (
	"github.com/google/uuid"
)

// WalletTransaction is a ledger row recording every debit/credit against a
// user's wallet. BalanceAfter is captured under the same row lock as the
// balance update so the ledger and the running balance cannot diverge.
type WalletTransaction struct {
	BaseModel
	UserID       uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Direction    WalletDirection `json:"direction" gorm:"type:varchar(10);not null"`
	Amount       float64         `json:"amount" gorm:"type:decimal(12,2);not null"`
	BalanceAfter float64         `json:"balance_after" gorm:"type:decimal(12,2);not null"`
	Reference    string          `json:"reference" gorm:"size:100;index"`
	Description  string          `json:"description" gorm:"size:255"`
}

// AuditLog records every mutating API call for after-the-fact review.
type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:50;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:255"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
}
