package public

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/plktk/ticketpay/internal/http/response"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/queue"
	"github.com/plktk/ticketpay/internal/service"

	"github.com/gin-gonic/gin"
)

const webhookInlineProcessTimeout = time.Minute

// PaymentWebhook receives gateway notifications. The handler always
// acknowledges with 200 so the gateway stops redelivering; processing
// happens off the request path.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	log := requestLog(c)

	var n service.Notification
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("payment_webhook_body_read_failed", "error", err)
	} else if len(body) > 0 {
		if uerr := json.Unmarshal(body, &n); uerr != nil {
			log.Debugw("payment_webhook_body_unmarshal_failed", "error", uerr)
		}
	}
	mergeWebhookQuery(c, &n)

	paymentID, verr := h.WebhookService.ValidateNotification(n)
	if verr != nil {
		// Non-payment notifications and malformed payloads are acked
		// without processing.
		log.Infow("payment_webhook_ignored",
			"type", n.Type,
			"topic", n.Topic,
			"client_ip", c.ClientIP(),
			"error", verr,
		)
		response.Success(c, gin.H{"accepted": true})
		return
	}

	log.Infow("payment_webhook_received",
		"payment_id", paymentID,
		"type", n.Type,
		"topic", n.Topic,
		"action", n.Action,
		"client_ip", c.ClientIP(),
		"body_size", len(body),
	)
	h.dispatchWebhook(paymentID)
	response.Success(c, gin.H{"accepted": true})
}

// mergeWebhookQuery fills notification fields from query parameters.
// The gateway sends IPN-style notifications with type and data.id in
// the query string and an empty or partial body.
func mergeWebhookQuery(c *gin.Context, n *service.Notification) {
	if n.Type == "" {
		n.Type = strings.TrimSpace(c.Query("type"))
	}
	if n.Topic == "" {
		n.Topic = strings.TrimSpace(c.Query("topic"))
	}
	if n.Data.ID == "" {
		n.Data.ID = strings.TrimSpace(c.Query("data.id"))
	}
	if n.Data.ID == "" {
		n.Data.ID = strings.TrimSpace(c.Query("id"))
	}
}

func (h *Handler) dispatchWebhook(paymentID string) {
	payload := queue.WebhookProcessPayload{PaymentID: paymentID}
	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueWebhookProcess(payload); err == nil {
			return
		} else {
			logger.Warnw("payment_webhook_enqueue_failed", "payment_id", paymentID, "error", err)
		}
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookInlineProcessTimeout)
		defer cancel()
		if err := h.WebhookService.Process(ctx, paymentID); err != nil {
			logger.Warnw("payment_webhook_process_failed", "payment_id", paymentID, "error", err)
		}
	}()
}
