package service

import (
	"fmt"
	"strings"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/gateway/mercadopago"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/models"
	"github.com/plktk/ticketpay/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileService applies a gateway payment record to the local
// order and its transactions.
type ReconcileService struct {
	orderRepo repository.OrderRepository
	txRepo    repository.TransactionRepository
}

// NewReconcileService creates a reconcile service.
func NewReconcileService(orderRepo repository.OrderRepository, txRepo repository.TransactionRepository) *ReconcileService {
	return &ReconcileService{
		orderRepo: orderRepo,
		txRepo:    txRepo,
	}
}

// ReconcileResult reports what a reconcile pass changed. Transitioned
// holds exactly the transactions flipped by this pass; a redelivered
// notification yields an empty slice.
type ReconcileResult struct {
	Action       StatusAction
	Order        *models.Order
	Transitioned []models.Transaction
}

func reconcileLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// Reconcile looks up the order referenced by the payment record and
// applies the status action. A missing order is not an error, the
// notification may belong to another system.
func (s *ReconcileService) Reconcile(record *mercadopago.PaymentRecord) (*ReconcileResult, error) {
	if record == nil {
		return nil, ErrNotificationInvalid
	}
	action := MapPaymentStatus(record.Status)
	result := &ReconcileResult{Action: action}

	log := reconcileLogger(
		"gateway_payment_id", record.ID,
		"gateway_status", record.Status,
		"external_reference", record.ExternalReference,
		"action", action,
	)

	orderCode := strings.TrimSpace(record.ExternalReference)
	if orderCode == "" {
		log.Warnw("reconcile_external_reference_missing")
		return result, nil
	}

	order, err := s.orderRepo.GetByOrderCode(orderCode)
	if err != nil {
		log.Errorw("reconcile_order_lookup_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}
	if order == nil {
		log.Warnw("reconcile_order_not_found")
		return result, nil
	}
	result.Order = order

	gatewayPaymentID := fmt.Sprintf("%d", record.ID)

	switch action {
	case ActionAccept:
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			transitioned, txErr := s.txRepo.WithTx(tx).TransitionPending(order.ID, constants.TransactionStatusCompleted, map[string]interface{}{
				"gateway_payment_id": gatewayPaymentID,
			})
			if txErr != nil {
				return txErr
			}
			result.Transitioned = transitioned
			return s.orderRepo.WithTx(tx).MarkPaid(order.ID, map[string]interface{}{
				"gateway_payment_id":    gatewayPaymentID,
				"gateway_status_detail": record.StatusDetail,
			})
		})
	case ActionReject:
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			transitioned, txErr := s.txRepo.WithTx(tx).TransitionPending(order.ID, constants.TransactionStatusFailed, map[string]interface{}{
				"gateway_payment_id": gatewayPaymentID,
			})
			if txErr != nil {
				return txErr
			}
			result.Transitioned = transitioned
			if len(transitioned) == 0 {
				return nil
			}
			return s.orderRepo.WithTx(tx).UpdatePaymentStatus(order.ID, constants.OrderPaymentStatusFailed, map[string]interface{}{
				"gateway_payment_id":    gatewayPaymentID,
				"gateway_status_detail": record.StatusDetail,
			})
		})
	case ActionDefer:
		err = s.orderRepo.UpdatePaymentStatus(order.ID, order.PaymentStatus, map[string]interface{}{
			"gateway_payment_id":    gatewayPaymentID,
			"gateway_status_detail": record.StatusDetail,
		})
	case ActionIgnore:
		// no writes
	}
	if err != nil {
		log.Errorw("reconcile_apply_failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}

	log.Infow("reconcile_applied",
		"order_id", order.ID,
		"transitioned", len(result.Transitioned),
	)
	return result, nil
}
