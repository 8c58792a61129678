package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is a single payable unit under an order. Rows are created at
// order time with status pending; the webhook pipeline only transitions
// status, it never creates or deletes rows.
type Transaction struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	OrderID          uint           `gorm:"index;not null" json:"order_id"`
	Status           string         `gorm:"index;not null;default:'pending'" json:"status"`
	Amount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	GatewayPaymentID string         `gorm:"index" json:"gateway_payment_id"`
	Metadata         JSON           `gorm:"type:json" json:"metadata"`
	PaidAt           *time.Time     `gorm:"index" json:"paid_at"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name.
func (Transaction) TableName() string {
	return "transactions"
}

// ItemName returns the metadata item name, empty when absent.
func (t *Transaction) ItemName() string {
	if t == nil {
		return ""
	}
	if item := t.Metadata.Map("item"); item != nil {
		return item.String("name")
	}
	return ""
}

// ItemCode returns the metadata item code, empty when absent.
func (t *Transaction) ItemCode() string {
	if t == nil {
		return ""
	}
	if item := t.Metadata.Map("item"); item != nil {
		return item.String("code")
	}
	return ""
}
