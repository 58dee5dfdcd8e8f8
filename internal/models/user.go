// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username      string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash  string     `json:"-" gorm:"size:255;not null"`
	Role          UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	WalletBalance float64    `json:"wallet_balance" gorm:"type:decimal(12,2);not null;default:0"`
	LastLoginAt   *time.Time `json:"last_login_at"`

	// Relationships
	Products           []Product           `json:"products,omitempty" gorm:"foreignKey:FarmerID"`
	Batches            []Batch             `json:"batches,omitempty" gorm:"foreignKey:CurrentOwnerID"`
	Events             []Event             `json:"events,omitempty" gorm:"foreignKey:ActorUserID"`
	WalletTransactions []WalletTransaction `json:"wallet_transactions,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// StartingWalletBalance returns the demo wallet credit a role receives at
// registration. Buyers of produce need funds before the first transaction.
func StartingWalletBalance(role UserRole) float64 {
	switch role {
	case RoleDistributor:
		return 50000
	case RoleShopkeeper:
		return 20000
	default:
		return 0
	}
}
