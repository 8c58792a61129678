package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/gateway/mercadopago"
	"github.com/plktk/ticketpay/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxInstallments      = 12
	pixExpirationMinutes = 30
)

// PaymentService fronts payment creation and status lookup against
// the gateway.
type PaymentService struct {
	gatewayCfg *mercadopago.Config

	createPayment func(ctx context.Context, cfg *mercadopago.Config, input mercadopago.CreateInput) (*mercadopago.PaymentRecord, error)
	getPayment    func(ctx context.Context, cfg *mercadopago.Config, paymentID string) (*mercadopago.PaymentRecord, error)
}

// NewPaymentService creates a payment service.
func NewPaymentService(gatewayCfg *mercadopago.Config) *PaymentService {
	return &PaymentService{
		gatewayCfg:    gatewayCfg,
		createPayment: mercadopago.CreatePayment,
		getPayment:    mercadopago.GetPayment,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// PayerInput identifies the paying customer on a create request.
type PayerInput struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	CPF        string `json:"cpf"`
	ZipCode    string `json:"zip_code"`
	Street     string `json:"street_name"`
	Number     string `json:"street_number"`
	District   string `json:"neighborhood"`
	City       string `json:"city"`
	RegionCode string `json:"federal_unit"`
}

// CreatePaymentInput is a payment creation request.
type CreatePaymentInput struct {
	Amount          float64                `json:"transaction_amount"`
	Description     string                 `json:"description"`
	PaymentMethod   string                 `json:"payment_method"`
	Token           string                 `json:"token"`
	Installments    int                    `json:"installments"`
	PaymentMethodID string                 `json:"payment_method_id"`
	OrderCode       string                 `json:"order_code"`
	Payer           PayerInput             `json:"payer"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// PaymentOutput is the shaped create/lookup response.
type PaymentOutput struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	PaymentMethodID   string `json:"payment_method_id"`
	ExternalReference string `json:"external_reference,omitempty"`
	TransactionAmount string `json:"transaction_amount"`
	QRCode            string `json:"qr_code,omitempty"`
	QRCodeBase64      string `json:"qr_code_base64,omitempty"`
	TicketURL         string `json:"ticket_url,omitempty"`
	BoletoURL         string `json:"boleto_url,omitempty"`
	LastFourDigits    string `json:"last_four_digits,omitempty"`
	DateApproved      string `json:"date_approved,omitempty"`
}

// SanitizeCPF strips everything but digits.
func SanitizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *PaymentService) validateCreateInput(input *CreatePaymentInput) error {
	if input.Amount <= 0 {
		return fmt.Errorf("%w: transaction_amount must be positive", ErrPaymentInvalid)
	}
	email := strings.TrimSpace(input.Payer.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: payer email is required", ErrPaymentInvalid)
	}
	cpf := SanitizeCPF(input.Payer.CPF)
	if len(cpf) != 11 {
		return fmt.Errorf("%w: payer cpf must have 11 digits", ErrPaymentInvalid)
	}

	switch strings.TrimSpace(input.PaymentMethod) {
	case constants.PaymentMethodCreditCard, constants.PaymentMethodDebitCard:
		if strings.TrimSpace(input.Token) == "" {
			return fmt.Errorf("%w: card token is required", ErrPaymentInvalid)
		}
		if strings.TrimSpace(input.PaymentMethodID) == "" {
			return fmt.Errorf("%w: payment_method_id is required", ErrPaymentInvalid)
		}
		if input.Installments < 1 || input.Installments > maxInstallments {
			return fmt.Errorf("%w: installments must be between 1 and %d", ErrPaymentInvalid, maxInstallments)
		}
	case constants.PaymentMethodPix, constants.PaymentMethodBoleto:
		// no extra required fields
	default:
		return fmt.Errorf("%w: unsupported payment_method %q", ErrPaymentInvalid, input.PaymentMethod)
	}
	return nil
}

// CreatePayment validates the request, builds the per-method gateway
// body and forwards it. The notification URL is attached only when the
// configured webhook endpoint is https, the gateway rejects plain
// http callbacks.
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*PaymentOutput, error) {
	log := paymentLogger(
		"payment_method", input.PaymentMethod,
		"order_code", input.OrderCode,
	)
	if err := s.validateCreateInput(&input); err != nil {
		log.Warnw("payment_create_invalid", "error", err)
		return nil, err
	}

	gatewayInput := mercadopago.CreateInput{
		TransactionAmount: input.Amount,
		Description:       strings.TrimSpace(input.Description),
		ExternalReference: strings.TrimSpace(input.OrderCode),
		Metadata:          input.Metadata,
		IdempotencyKey:    uuid.NewString(),
	}
	gatewayInput.Payer.Email = strings.TrimSpace(input.Payer.Email)
	gatewayInput.Payer.FirstName = strings.TrimSpace(input.Payer.FirstName)
	gatewayInput.Payer.LastName = strings.TrimSpace(input.Payer.LastName)
	gatewayInput.Payer.Identification.Type = "CPF"
	gatewayInput.Payer.Identification.Number = SanitizeCPF(input.Payer.CPF)

	switch strings.TrimSpace(input.PaymentMethod) {
	case constants.PaymentMethodCreditCard, constants.PaymentMethodDebitCard:
		gatewayInput.Token = strings.TrimSpace(input.Token)
		gatewayInput.Installments = input.Installments
		gatewayInput.PaymentMethodID = strings.TrimSpace(input.PaymentMethodID)
	case constants.PaymentMethodPix:
		gatewayInput.PaymentMethodID = "pix"
		gatewayInput.DateOfExpiration = time.Now().
			Add(pixExpirationMinutes * time.Minute).
			Format("2006-01-02T15:04:05.000-07:00")
	case constants.PaymentMethodBoleto:
		gatewayInput.PaymentMethodID = "bolbradesco"
	}

	if s.gatewayCfg != nil && strings.HasPrefix(strings.TrimSpace(s.gatewayCfg.NotifyURL), "https://") {
		gatewayInput.NotificationURL = strings.TrimSpace(s.gatewayCfg.NotifyURL)
	}

	record, err := s.createPayment(ctx, s.gatewayCfg, gatewayInput)
	if err != nil {
		log.Errorw("payment_create_gateway_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}
	log.Infow("payment_created",
		"gateway_payment_id", record.ID,
		"gateway_status", record.Status,
	)
	return shapePaymentOutput(record), nil
}

// GetPayment proxies a gateway payment lookup.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*PaymentOutput, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrPaymentInvalid)
	}
	record, err := s.getPayment(ctx, s.gatewayCfg, paymentID)
	if err != nil {
		if errors.Is(err, mercadopago.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}
	return shapePaymentOutput(record), nil
}

// Installments splits the amount into 1..12 equal monthly options.
func (s *PaymentService) Installments(amount float64) ([]mercadopago.InstallmentOption, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentInvalid)
	}
	total := decimal.NewFromFloat(amount).Round(2)
	options := make([]mercadopago.InstallmentOption, 0, maxInstallments)
	for n := 1; n <= maxInstallments; n++ {
		per := total.Div(decimal.NewFromInt(int64(n))).Round(2)
		perFloat, _ := per.Float64()
		totalFloat, _ := total.Float64()
		options = append(options, mercadopago.InstallmentOption{
			Installments:      n,
			InstallmentAmount: perFloat,
			TotalAmount:       totalFloat,
		})
	}
	return options, nil
}

func shapePaymentOutput(record *mercadopago.PaymentRecord) *PaymentOutput {
	out := &PaymentOutput{
		ID:                record.ID,
		Status:            record.Status,
		StatusDetail:      record.StatusDetail,
		PaymentMethodID:   record.PaymentMethodID,
		ExternalReference: record.ExternalReference,
		TransactionAmount: decimal.NewFromFloat(record.TransactionAmount).StringFixed(2),
		DateApproved:      record.DateApproved,
	}
	switch record.PaymentMethodID {
	case "pix":
		out.QRCode = record.PointOfInteraction.TransactionData.QRCode
		out.QRCodeBase64 = record.PointOfInteraction.TransactionData.QRCodeBase64
		out.TicketURL = record.PointOfInteraction.TransactionData.TicketURL
	case "bolbradesco":
		out.BoletoURL = record.TransactionDetails.ExternalResourceURL
	default:
		out.LastFourDigits = record.Card.LastFourDigits
	}
	return out
}
