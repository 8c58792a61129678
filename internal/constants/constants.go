package constants

// Order payment status constants
const (
	OrderPaymentStatusPending = "pending"
	OrderPaymentStatusPaid    = "paid"
	OrderPaymentStatusFailed  = "failed"
)

// Transaction status constants
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Ticket status constants
const (
	TicketStatusActive   = "active"
	TicketStatusUsed     = "used"
	TicketStatusCanceled = "canceled"
)

// DefaultTicketType is used when a transaction carries no item name.
const DefaultTicketType = "Ingresso"

// TicketQRCodePrefix prefixes every generated ticket QR token.
const TicketQRCodePrefix = "PLKTK"

// Affiliate commission status constants
const (
	CommissionStatusPending = "pending"
	CommissionStatusPaid    = "paid"
)

// Affiliate profile status constants
const (
	AffiliateProfileStatusActive   = "active"
	AffiliateProfileStatusDisabled = "disabled"
)

// Payment method constants (inbound create-payment requests)
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
	PaymentMethodPix        = "pix"
	PaymentMethodBoleto     = "boleto"
)

// Queue name constants
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Async task type constants
const (
	TaskWebhookProcess = "webhook:process"
)

// Notification kind constants (gateway webhook payloads)
const (
	NotificationKindPayment  = "payment"
	NotificationTopicPayment = "payment"
)
