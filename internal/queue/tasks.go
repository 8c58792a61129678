package queue

import (
	"encoding/json"

	"github.com/plktk/ticketpay/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskWebhookProcess processes one gateway payment notification.
const TaskWebhookProcess = constants.TaskWebhookProcess

// WebhookProcessPayload carries the gateway payment id to the worker.
type WebhookProcessPayload struct {
	PaymentID string `json:"payment_id"`
}

// NewWebhookProcessTask builds a webhook processing task.
func NewWebhookProcessTask(payload WebhookProcessPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWebhookProcess, body), nil
}
