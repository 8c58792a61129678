package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateProfile identifies a referring affiliate by its public code.
// The code travels through gateway payment metadata.
type AffiliateProfile struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	AffiliateCode string         `gorm:"uniqueIndex;not null" json:"affiliate_code"`
	Name          string         `gorm:"type:varchar(200)" json:"name"`
	Status        string         `gorm:"index;not null;default:'active'" json:"status"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name.
func (AffiliateProfile) TableName() string {
	return "affiliate_profiles"
}
