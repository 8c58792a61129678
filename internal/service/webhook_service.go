package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/gateway/mercadopago"
	"github.com/plktk/ticketpay/internal/idempotency"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/models"

	"go.uber.org/zap"
)

// Notification is a gateway webhook payload. Mercado Pago sends the
// kind either as type or as topic depending on the notification
// channel.
type Notification struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// WebhookService runs the webhook processing pipeline. The transport
// ack is not its concern, handlers respond before Process runs.
type WebhookService struct {
	guard      idempotency.Guard
	gatewayCfg *mercadopago.Config
	reconcile  *ReconcileService
	tickets    *TicketService
	affiliates *AffiliateService
	dedupeTTL  time.Duration

	fetchPayment func(ctx context.Context, cfg *mercadopago.Config, paymentID string) (*mercadopago.PaymentRecord, error)
}

// NewWebhookService creates a webhook service.
func NewWebhookService(
	guard idempotency.Guard,
	gatewayCfg *mercadopago.Config,
	reconcile *ReconcileService,
	tickets *TicketService,
	affiliates *AffiliateService,
	dedupeTTL time.Duration,
) *WebhookService {
	if dedupeTTL <= 0 {
		dedupeTTL = time.Hour
	}
	return &WebhookService{
		guard:        guard,
		gatewayCfg:   gatewayCfg,
		reconcile:    reconcile,
		tickets:      tickets,
		affiliates:   affiliates,
		dedupeTTL:    dedupeTTL,
		fetchPayment: mercadopago.GetPayment,
	}
}

func webhookLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// ValidateNotification checks the payload shape and extracts the
// gateway payment id. Non-payment kinds and missing ids are invalid;
// the caller logs and acks without processing.
func (s *WebhookService) ValidateNotification(n Notification) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(n.Type))
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(n.Topic))
	}
	if kind != constants.NotificationKindPayment {
		return "", fmt.Errorf("%w: kind %q", ErrNotificationInvalid, kind)
	}
	paymentID := strings.TrimSpace(n.Data.ID)
	if paymentID == "" {
		return "", fmt.Errorf("%w: missing payment id", ErrNotificationInvalid)
	}
	return paymentID, nil
}

// Process runs dedupe, fetch, reconcile, ticket issuance and
// commission confirmation for one payment notification. Stages after
// the reconcile commit log failures and keep going, their effects are
// recoverable by hand while a retry could not re-observe the
// transitioned rows.
func (s *WebhookService) Process(ctx context.Context, paymentID string) error {
	log := webhookLogger("gateway_payment_id", paymentID)

	dedupeKey := "payment:" + paymentID
	if s.guard != nil {
		shouldProcess, err := s.guard.ShouldProcess(ctx, dedupeKey)
		if err != nil {
			log.Warnw("webhook_dedupe_check_failed", "error", err)
		}
		if !shouldProcess {
			log.Infow("webhook_duplicate_skipped")
			return nil
		}
	}

	record, err := s.fetchPayment(ctx, s.gatewayCfg, paymentID)
	if err != nil {
		log.Errorw("webhook_payment_fetch_failed", "error", err)
		return err
	}
	log.Infow("webhook_payment_fetched",
		"gateway_status", record.Status,
		"external_reference", record.ExternalReference,
	)

	if models.DB == nil {
		log.Warnw("webhook_datastore_unconfigured",
			"gateway_status", record.Status,
			"external_reference", record.ExternalReference,
		)
		s.markProcessed(ctx, log, dedupeKey)
		return nil
	}

	result, err := s.reconcile.Reconcile(record)
	if err != nil {
		log.Errorw("webhook_reconcile_failed", "error", err)
		return err
	}
	s.markProcessed(ctx, log, dedupeKey)

	// Tickets and commissions follow accepted payments only. A
	// rejection also transitions rows (to failed), those must not
	// earn side effects.
	if result.Action != ActionAccept || result.Order == nil || len(result.Transitioned) == 0 {
		log.Infow("webhook_processed",
			"action", result.Action,
			"transitioned", len(result.Transitioned),
		)
		return nil
	}

	if _, err := s.tickets.Issue(result.Order, result.Transitioned); err != nil {
		log.Errorw("webhook_ticket_issue_failed", "order_id", result.Order.ID, "error", err)
	}
	if err := s.affiliates.ConfirmCommission(result.Order, record.Metadata, result.Transitioned); err != nil {
		log.Errorw("webhook_commission_confirm_failed", "order_id", result.Order.ID, "error", err)
	}

	log.Infow("webhook_processed",
		"action", result.Action,
		"order_id", result.Order.ID,
		"transitioned", len(result.Transitioned),
	)
	return nil
}

func (s *WebhookService) markProcessed(ctx context.Context, log *zap.SugaredLogger, dedupeKey string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.MarkProcessed(ctx, dedupeKey, s.dedupeTTL); err != nil {
		log.Warnw("webhook_dedupe_mark_failed", "error", err)
	}
}
