// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// Order spans one or more batches of a single seller. It becomes immutable
// once IsCompleted flips to true at the end of the creation transaction.
type Order struct {
	BaseModel
	OrderNumber string    `json:"order_number" gorm:"uniqueIndex;size:64;not null"`
	BuyerID     uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID    uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`
	TotalAmount float64   `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	IsCompleted bool      `json:"is_completed" gorm:"not null;default:false"`

	// Relationships
	Buyer  User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller User        `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Items  []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	BatchID   uuid.UUID `json:"batch_id" gorm:"type:uuid;not null;index"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(12,3);not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Batch Batch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Quantity * i.UnitPrice
}
