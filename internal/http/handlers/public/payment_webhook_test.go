package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plktk/ticketpay/internal/config"
	"github.com/plktk/ticketpay/internal/provider"

	"github.com/gin-gonic/gin"
)

func setupWebhookHandlerTest(t *testing.T) (*Handler, chan string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fetched := make(chan string, 4)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":123456,"status":"approved","external_reference":"ORDER_1001","transaction_amount":50}`))
	}))
	t.Cleanup(gateway.Close)

	cfg := &config.Config{
		MercadoPago: config.MercadoPagoConfig{
			AccessToken: "test-token",
			BaseURL:     gateway.URL,
			TimeoutMS:   2000,
		},
		Webhook: config.WebhookConfig{DedupeTTLMinutes: 10},
	}
	return New(provider.NewContainer(cfg)), fetched
}

func postWebhook(t *testing.T, h *Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h.PaymentWebhook(c)
	return w
}

func assertAccepted(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Accepted bool `json:"accepted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if !resp.Data.Accepted {
		t.Fatalf("expected accepted=true, body: %s", w.Body.String())
	}
}

func TestPaymentWebhookAcksNonPaymentTopic(t *testing.T) {
	h, fetched := setupWebhookHandlerTest(t)

	w := postWebhook(t, h, "/api/v1/payments/webhook", `{"topic":"merchant_order","data":{"id":"99"}}`)
	assertAccepted(t, w)

	select {
	case path := <-fetched:
		t.Fatalf("gateway should not be called for non-payment topics, got %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPaymentWebhookAcksMissingPaymentID(t *testing.T) {
	h, fetched := setupWebhookHandlerTest(t)

	w := postWebhook(t, h, "/api/v1/payments/webhook", `{"type":"payment","data":{}}`)
	assertAccepted(t, w)

	select {
	case path := <-fetched:
		t.Fatalf("gateway should not be called without a payment id, got %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPaymentWebhookDispatchesFromBody(t *testing.T) {
	h, fetched := setupWebhookHandlerTest(t)

	w := postWebhook(t, h, "/api/v1/payments/webhook", `{"type":"payment","action":"payment.updated","data":{"id":"123456"}}`)
	assertAccepted(t, w)

	select {
	case path := <-fetched:
		if path != "/v1/payments/123456" {
			t.Fatalf("gateway path want /v1/payments/123456 got %s", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("gateway fetch never happened")
	}
}

func TestPaymentWebhookDispatchesFromQueryParams(t *testing.T) {
	h, fetched := setupWebhookHandlerTest(t)

	w := postWebhook(t, h, "/api/v1/payments/webhook?topic=payment&id=777", "")
	assertAccepted(t, w)

	select {
	case path := <-fetched:
		if path != "/v1/payments/777" {
			t.Fatalf("gateway path want /v1/payments/777 got %s", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("gateway fetch never happened")
	}
}
