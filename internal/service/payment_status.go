package service

import (
	"strings"

	"github.com/plktk/ticketpay/internal/gateway/mercadopago"
)

// StatusAction is the reconciliation decision for a gateway payment
// status.
type StatusAction string

const (
	ActionAccept StatusAction = "accept"
	ActionReject StatusAction = "reject"
	ActionDefer  StatusAction = "defer"
	ActionIgnore StatusAction = "ignore"
)

// MapPaymentStatus translates a gateway payment status into the
// reconciliation action. Unknown statuses are ignored so new gateway
// states never corrupt local order state.
func MapPaymentStatus(status string) StatusAction {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case mercadopago.StatusApproved:
		return ActionAccept
	case mercadopago.StatusRejected, mercadopago.StatusCancelled:
		return ActionReject
	case mercadopago.StatusPending, mercadopago.StatusInProcess,
		mercadopago.StatusInMediation, mercadopago.StatusAuthorized:
		return ActionDefer
	default:
		return ActionIgnore
	}
}
