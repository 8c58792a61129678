package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is an internal purchase record keyed by a merchant-assigned order code.
// The gateway echoes the order code back as external_reference on payments.
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	OrderCode           string         `gorm:"uniqueIndex;not null" json:"order_code"`
	UserID              uint           `gorm:"index;not null" json:"user_id"`
	EventID             uint           `gorm:"index;not null" json:"event_id"`
	PaymentStatus       string         `gorm:"index;not null;default:'pending'" json:"payment_status"`
	GatewayPaymentID    string         `gorm:"index" json:"gateway_payment_id"`
	GatewayStatusDetail string         `gorm:"type:varchar(100)" json:"gateway_status_detail"`
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	Metadata            JSON           `gorm:"type:json" json:"metadata"`
	PaidAt              *time.Time     `gorm:"index" json:"paid_at"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Transactions []Transaction `gorm:"foreignKey:OrderID" json:"transactions,omitempty"`
}

// TableName overrides the table name.
func (Order) TableName() string {
	return "orders"
}
