package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateSale is a pending commission accrued against an event sale.
// TransactionID is linked when the commission is confirmed.
type AffiliateSale struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	AffiliateProfileID uint           `gorm:"index;not null" json:"affiliate_profile_id"`
	EventID            uint           `gorm:"index" json:"event_id"`
	CommissionStatus   string         `gorm:"index;not null;default:'pending'" json:"commission_status"`
	TransactionID      *uint          `gorm:"index" json:"transaction_id"`
	Amount             Money          `gorm:"type:decimal(20,2)" json:"amount"`
	ConfirmedAt        *time.Time     `json:"confirmed_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name.
func (AffiliateSale) TableName() string {
	return "affiliate_sales"
}
