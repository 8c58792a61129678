package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/models"
	"github.com/plktk/ticketpay/internal/repository"

	"go.uber.org/zap"
)

// TicketService issues tickets for settled transactions.
type TicketService struct {
	ticketRepo repository.TicketRepository
}

// NewTicketService creates a ticket service.
func NewTicketService(ticketRepo repository.TicketRepository) *TicketService {
	return &TicketService{ticketRepo: ticketRepo}
}

func ticketLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// Issue creates exactly one ticket per transitioned transaction and
// inserts them in a single batch. The batch either lands whole or not
// at all; a failed batch issues nothing and is reported for manual
// follow-up.
func (s *TicketService) Issue(order *models.Order, transitioned []models.Transaction) ([]models.Ticket, error) {
	if order == nil || len(transitioned) == 0 {
		return nil, nil
	}
	log := ticketLogger(
		"order_id", order.ID,
		"order_code", order.OrderCode,
		"transitioned", len(transitioned),
	)

	tickets := make([]models.Ticket, 0, len(transitioned))
	for i := range transitioned {
		tx := &transitioned[i]
		ticketType := strings.TrimSpace(tx.ItemName())
		if ticketType == "" {
			ticketType = constants.DefaultTicketType
		}
		tickets = append(tickets, models.Ticket{
			UserID:     order.UserID,
			EventID:    order.EventID,
			Price:      tx.Amount,
			Status:     constants.TicketStatusActive,
			QRCode:     GenerateQRCode(order.EventID),
			TicketType: ticketType,
			Metadata: models.JSON{
				"order_id":           order.ID,
				"order_code":         order.OrderCode,
				"transaction_id":     tx.ID,
				"gateway_payment_id": tx.GatewayPaymentID,
				"item_code":          tx.ItemCode(),
			},
		})
	}

	if err := s.ticketRepo.CreateBatch(tickets); err != nil {
		log.Errorw("ticket_issue_batch_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTicketIssueFailed, err)
	}
	log.Infow("tickets_issued", "count", len(tickets))
	return tickets, nil
}

// GenerateQRCode builds a unique ticket token. Format:
// PLKTK_<eventID>_<unixmilli>_<random>.
func GenerateQRCode(eventID uint) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// fall back to the clock, uniqueness is still enforced by the
		// qr_code unique index
		return fmt.Sprintf("%s_%d_%d_%d", constants.TicketQRCodePrefix, eventID, time.Now().UnixMilli(), time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%s_%d_%d_%s", constants.TicketQRCodePrefix, eventID, time.Now().UnixMilli(), hex.EncodeToString(buf))
}
