package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("mercadopago config invalid")
	ErrRequestFailed   = errors.New("mercadopago request failed")
	ErrResponseInvalid = errors.New("mercadopago response invalid")
	ErrPaymentNotFound = errors.New("mercadopago payment not found")
)

// Payment status values returned by the gateway.
const (
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusCancelled   = "cancelled"
	StatusPending     = "pending"
	StatusInProcess   = "in_process"
	StatusInMediation = "in_mediation"
	StatusAuthorized  = "authorized"
)

const defaultTimeoutMS = 5000

// Config holds the gateway credentials and endpoint.
type Config struct {
	AccessToken string `json:"access_token"`
	BaseURL     string `json:"base_url"`
	NotifyURL   string `json:"notify_url"`
	TimeoutMS   int    `json:"timeout_ms"`
}

// ValidateConfig checks required fields.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return fmt.Errorf("%w: access_token is required", ErrConfigInvalid)
	}
	return nil
}

// normalize returns a defaulted copy. The receiver config may be
// shared across concurrent requests and is never written to.
func (c *Config) normalize() Config {
	out := *c
	out.AccessToken = strings.TrimSpace(out.AccessToken)
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	out.NotifyURL = strings.TrimSpace(out.NotifyURL)
	if out.BaseURL == "" {
		out.BaseURL = "https://api.mercadopago.com"
	}
	if out.TimeoutMS <= 0 {
		out.TimeoutMS = defaultTimeoutMS
	}
	return out
}

// Payer identifies the paying customer.
type Payer struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Identification struct {
		Type   string `json:"type,omitempty"`
		Number string `json:"number,omitempty"`
	} `json:"identification"`
}

// CreateInput is a payment creation request.
type CreateInput struct {
	TransactionAmount float64                `json:"transaction_amount"`
	Token             string                 `json:"token,omitempty"`
	Description       string                 `json:"description,omitempty"`
	Installments      int                    `json:"installments,omitempty"`
	PaymentMethodID   string                 `json:"payment_method_id"`
	Payer             Payer                  `json:"payer"`
	ExternalReference string                 `json:"external_reference"`
	NotificationURL   string                 `json:"notification_url,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	DateOfExpiration  string                 `json:"date_of_expiration,omitempty"`
	IdempotencyKey    string                 `json:"-"`
}

// PaymentRecord is the gateway's view of a payment.
type PaymentRecord struct {
	ID                int64                  `json:"id"`
	Status            string                 `json:"status"`
	StatusDetail      string                 `json:"status_detail"`
	ExternalReference string                 `json:"external_reference"`
	TransactionAmount float64                `json:"transaction_amount"`
	PaymentMethodID   string                 `json:"payment_method_id"`
	PaymentTypeID     string                 `json:"payment_type_id"`
	DateApproved      string                 `json:"date_approved"`
	DateCreated       string                 `json:"date_created"`
	Metadata          map[string]interface{} `json:"metadata"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
	TransactionDetails struct {
		ExternalResourceURL string `json:"external_resource_url"`
	} `json:"transaction_details"`
	Card struct {
		LastFourDigits string `json:"last_four_digits"`
	} `json:"card"`
}

// GetPayment fetches a payment by gateway ID.
func GetPayment(ctx context.Context, cfg *Config, paymentID string) (*PaymentRecord, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	conf := cfg.normalize()
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("%w: empty payment id", ErrConfigInvalid)
	}

	endpoint := fmt.Sprintf("%s/v1/payments/%s", conf.BaseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+conf.AccessToken)
	req.Header.Set("Accept", "application/json")

	respBytes, status, err := doRequest(conf, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: id %s", ErrPaymentNotFound, paymentID)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, status)
	}

	var record PaymentRecord
	if err := json.Unmarshal(respBytes, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if record.ID == 0 {
		return nil, fmt.Errorf("%w: missing payment id", ErrResponseInvalid)
	}
	return &record, nil
}

// CreatePayment submits a new payment to the gateway.
func CreatePayment(ctx context.Context, cfg *Config, input CreateInput) (*PaymentRecord, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	conf := cfg.normalize()
	if input.TransactionAmount <= 0 {
		return nil, fmt.Errorf("%w: invalid amount", ErrConfigInvalid)
	}
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return nil, fmt.Errorf("%w: payment_method_id is required", ErrConfigInvalid)
	}
	if input.NotificationURL == "" {
		input.NotificationURL = conf.NotifyURL
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	endpoint := conf.BaseURL + "/v1/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+conf.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		req.Header.Set("X-Idempotency-Key", key)
	}

	respBytes, status, err := doRequest(conf, req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: http status %d: %s", ErrRequestFailed, status, gatewayMessage(respBytes))
	}

	var record PaymentRecord
	if err := json.Unmarshal(respBytes, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if record.ID == 0 {
		return nil, fmt.Errorf("%w: missing payment id", ErrResponseInvalid)
	}
	return &record, nil
}

// InstallmentOption is one financing plan for an amount.
type InstallmentOption struct {
	Installments      int     `json:"installments"`
	InstallmentAmount float64 `json:"installment_amount"`
	TotalAmount       float64 `json:"total_amount"`
}

func doRequest(cfg Config, req *http.Request) ([]byte, int, error) {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return respBytes, resp.StatusCode, nil
}

func gatewayMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
