package models

import (
	"time"

	"gorm.io/gorm"
)

// Ticket is a redeemable access artifact derived from a completed
// transaction. The QR code is globally unique.
type Ticket struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	EventID    uint           `gorm:"index;not null" json:"event_id"`
	Price      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	Status     string         `gorm:"index;not null;default:'active'" json:"status"`
	QRCode     string         `gorm:"uniqueIndex;not null" json:"qr_code"`
	TicketType string         `gorm:"type:varchar(200)" json:"ticket_type"`
	Metadata   JSON           `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name.
func (Ticket) TableName() string {
	return "tickets"
}
