package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/models"

	"gorm.io/gorm"
)

// AffiliateRepository is the affiliate data access interface.
type AffiliateRepository interface {
	GetProfileByCode(code string) (*models.AffiliateProfile, error)
	CreateProfile(profile *models.AffiliateProfile) error
	CreateSale(sale *models.AffiliateSale) error
	GetLatestPendingSale(profileID, eventID uint) (*models.AffiliateSale, error)
	ConfirmSale(saleID, transactionID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormAffiliateRepository
}

// GormAffiliateRepository is the GORM implementation.
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates an affiliate repository.
func NewAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormAffiliateRepository) WithTx(tx *gorm.DB) *GormAffiliateRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRepository{db: tx}
}

// GetProfileByCode fetches an active affiliate profile by its public
// code. Codes are matched case-insensitively by uppercasing.
func (r *GormAffiliateRepository) GetProfileByCode(code string) (*models.AffiliateProfile, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var profile models.AffiliateProfile
	if err := r.db.
		Where("affiliate_code = ? AND status = ?", normalized, constants.AffiliateProfileStatusActive).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// CreateProfile persists an affiliate profile.
func (r *GormAffiliateRepository) CreateProfile(profile *models.AffiliateProfile) error {
	return r.db.Create(profile).Error
}

// CreateSale persists a pending affiliate sale.
func (r *GormAffiliateRepository) CreateSale(sale *models.AffiliateSale) error {
	return r.db.Create(sale).Error
}

// GetLatestPendingSale returns the profile's newest pending sale for
// the given event.
func (r *GormAffiliateRepository) GetLatestPendingSale(profileID, eventID uint) (*models.AffiliateSale, error) {
	if profileID == 0 {
		return nil, nil
	}
	var sale models.AffiliateSale
	if err := r.db.
		Where("affiliate_profile_id = ? AND event_id = ? AND commission_status = ?", profileID, eventID, constants.CommissionStatusPending).
		Order("created_at DESC, id DESC").
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// ConfirmSale promotes a pending sale to paid and links the settling
// transaction. The WHERE on the current status makes the promotion
// single-shot under concurrent redeliveries.
func (r *GormAffiliateRepository) ConfirmSale(saleID, transactionID uint) (int64, error) {
	if saleID == 0 {
		return 0, nil
	}
	now := time.Now()
	result := r.db.Model(&models.AffiliateSale{}).
		Where("id = ? AND commission_status = ?", saleID, constants.CommissionStatusPending).
		Updates(map[string]interface{}{
			"commission_status": constants.CommissionStatusPaid,
			"transaction_id":    transactionID,
			"confirmed_at":      now,
			"updated_at":        now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
