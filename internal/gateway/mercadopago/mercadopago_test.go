package mercadopago

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	cfg := &Config{AccessToken: "TEST-token"}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig should pass, got: %v", err)
	}
	if err := ValidateConfig(&Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for empty token, got: %v", err)
	}
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := &Config{AccessToken: " TEST-token ", BaseURL: "https://api.example.com/"}
	conf := cfg.normalize()
	if conf.AccessToken != "TEST-token" {
		t.Fatalf("access token not normalized, got: %s", conf.AccessToken)
	}
	if conf.BaseURL != "https://api.example.com" {
		t.Fatalf("base url not normalized, got: %s", conf.BaseURL)
	}
	if conf.TimeoutMS != defaultTimeoutMS {
		t.Fatalf("timeout should default, got: %d", conf.TimeoutMS)
	}
}

func TestConfigNormalizeLeavesSourceUntouched(t *testing.T) {
	cfg := &Config{AccessToken: " TEST-token ", BaseURL: "https://api.example.com/"}
	_ = cfg.normalize()
	if cfg.AccessToken != " TEST-token " || cfg.BaseURL != "https://api.example.com/" {
		t.Fatalf("shared config must not be rewritten, got: %+v", cfg)
	}
	if cfg.TimeoutMS != 0 {
		t.Fatalf("shared config must not pick up defaults, got: %d", cfg.TimeoutMS)
	}
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/123456" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer TEST-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 123456,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "ORDER_1001",
			"transaction_amount": 100.00,
			"payment_method_id": "pix",
			"metadata": {"affiliate_code": "AFF42"}
		}`))
	}))
	defer srv.Close()

	cfg := &Config{AccessToken: "TEST-token", BaseURL: srv.URL}
	record, err := GetPayment(context.Background(), cfg, "123456")
	if err != nil {
		t.Fatalf("GetPayment error: %v", err)
	}
	if record.ID != 123456 || record.Status != StatusApproved {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.ExternalReference != "ORDER_1001" {
		t.Fatalf("unexpected external reference: %s", record.ExternalReference)
	}
	if record.Metadata["affiliate_code"] != "AFF42" {
		t.Fatalf("metadata not decoded: %+v", record.Metadata)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Payment not found"}`))
	}))
	defer srv.Close()

	cfg := &Config{AccessToken: "TEST-token", BaseURL: srv.URL}
	_, err := GetPayment(context.Background(), cfg, "999")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got: %v", err)
	}
}

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Idempotency-Key") == "" {
			t.Fatalf("idempotency key header missing")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7777, "status": "pending", "payment_method_id": "pix"}`))
	}))
	defer srv.Close()

	cfg := &Config{AccessToken: "TEST-token", BaseURL: srv.URL}
	record, err := CreatePayment(context.Background(), cfg, CreateInput{
		TransactionAmount: 50,
		PaymentMethodID:   "pix",
		ExternalReference: "ORDER_1001",
		IdempotencyKey:    "key-1",
	})
	if err != nil {
		t.Fatalf("CreatePayment error: %v", err)
	}
	if record.ID != 7777 || record.Status != StatusPending {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestCreatePaymentRejectedByGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid card token"}`))
	}))
	defer srv.Close()

	cfg := &Config{AccessToken: "TEST-token", BaseURL: srv.URL}
	_, err := CreatePayment(context.Background(), cfg, CreateInput{
		TransactionAmount: 50,
		PaymentMethodID:   "credit_card",
	})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got: %v", err)
	}
}
