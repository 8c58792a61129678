package service

import (
	"strings"

	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/models"
	"github.com/plktk/ticketpay/internal/repository"

	"go.uber.org/zap"
)

// affiliateMetadataKeys is the lookup order for the affiliate code in
// gateway payment metadata.
var affiliateMetadataKeys = []string{"affiliate_code", "affiliate", "referral_code"}

// AffiliateService confirms pending affiliate commissions once the
// referred sale settles.
type AffiliateService struct {
	repo repository.AffiliateRepository
}

// NewAffiliateService creates an affiliate service.
func NewAffiliateService(repo repository.AffiliateRepository) *AffiliateService {
	return &AffiliateService{repo: repo}
}

func affiliateLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// ExtractAffiliateCode pulls the affiliate code out of gateway payment
// metadata, checking the known keys in a fixed order.
func ExtractAffiliateCode(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	for _, key := range affiliateMetadataKeys {
		if value, ok := metadata[key].(string); ok {
			if code := strings.TrimSpace(value); code != "" {
				return code
			}
		}
	}
	return ""
}

// ConfirmCommission promotes the affiliate's newest pending sale for
// the order's event to paid and links the first settled transaction.
// Every miss is a silent no-op, commission confirmation never blocks
// ticket issuance.
func (s *AffiliateService) ConfirmCommission(order *models.Order, metadata map[string]interface{}, transitioned []models.Transaction) error {
	if order == nil || len(transitioned) == 0 {
		return nil
	}
	code := ExtractAffiliateCode(metadata)
	if code == "" {
		return nil
	}
	log := affiliateLogger(
		"order_id", order.ID,
		"order_code", order.OrderCode,
		"affiliate_code", code,
	)

	profile, err := s.repo.GetProfileByCode(code)
	if err != nil {
		log.Errorw("affiliate_profile_lookup_failed", "error", err)
		return err
	}
	if profile == nil {
		log.Infow("affiliate_profile_not_found")
		return nil
	}

	sale, err := s.repo.GetLatestPendingSale(profile.ID, order.EventID)
	if err != nil {
		log.Errorw("affiliate_sale_lookup_failed", "profile_id", profile.ID, "error", err)
		return err
	}
	if sale == nil {
		log.Infow("affiliate_pending_sale_not_found", "profile_id", profile.ID, "event_id", order.EventID)
		return nil
	}

	affected, err := s.repo.ConfirmSale(sale.ID, transitioned[0].ID)
	if err != nil {
		log.Errorw("affiliate_sale_confirm_failed", "sale_id", sale.ID, "error", err)
		return err
	}
	if affected == 0 {
		log.Infow("affiliate_sale_already_confirmed", "sale_id", sale.ID)
		return nil
	}
	log.Infow("affiliate_commission_confirmed",
		"sale_id", sale.ID,
		"transaction_id", transitioned[0].ID,
	)
	return nil
}
