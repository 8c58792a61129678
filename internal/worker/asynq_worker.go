package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/plktk/ticketpay/internal/gateway/mercadopago"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/provider"
	"github.com/plktk/ticketpay/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued webhook tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires task handlers into the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskWebhookProcess, c.handleWebhookProcess)
}

func (c *Consumer) handleWebhookProcess(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_webhook_process_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.WebhookProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_webhook_process_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == "" {
		logger.Debugw("worker_webhook_process_skip_invalid_payload")
		return nil
	}
	if c.WebhookService == nil {
		logger.Warnw("worker_webhook_process_skip_webhook_service_nil", "payment_id", payload.PaymentID)
		return nil
	}
	if err := c.WebhookService.Process(ctx, payload.PaymentID); err != nil {
		switch {
		case errors.Is(err, mercadopago.ErrPaymentNotFound):
			// The gateway no longer knows the payment. Retrying will
			// never change the answer.
			logger.Debugw("worker_webhook_process_skip_payment_not_found", "payment_id", payload.PaymentID)
			return nil
		case errors.Is(err, mercadopago.ErrConfigInvalid):
			logger.Warnw("worker_webhook_process_skip_gateway_unconfigured", "payment_id", payload.PaymentID)
			return nil
		default:
			logger.Warnw("worker_webhook_process_failed", "payment_id", payload.PaymentID, "error", err)
			return err
		}
	}
	return nil
}
