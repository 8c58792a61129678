package service

import "errors"

var (
	ErrNotificationInvalid  = errors.New("notification invalid")
	ErrOrderNotFound        = errors.New("order not found")
	ErrReconcileFailed      = errors.New("reconcile failed")
	ErrTicketIssueFailed    = errors.New("ticket issue failed")
	ErrDatastoreUnavailable = errors.New("datastore unavailable")
	ErrPaymentInvalid       = errors.New("payment request invalid")
	ErrGatewayRequestFailed = errors.New("gateway request failed")
	ErrPaymentNotFound      = errors.New("payment not found")
)
