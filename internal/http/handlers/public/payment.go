package public

import (
	"strconv"
	"strings"

	"github.com/plktk/ticketpay/internal/http/response"
	"github.com/plktk/ticketpay/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePayment creates a payment at the gateway.
func (h *Handler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.PaymentService.CreatePayment(c.Request.Context(), req)
	if err != nil {
		respondPaymentCreateError(c, err)
		return
	}

	requestLog(c).Infow("payment_created",
		"payment_id", result.ID,
		"status", result.Status,
		"payment_method_id", result.PaymentMethodID,
		"order_code", req.OrderCode,
	)
	response.Success(c, result)
}

// GetPayment looks a payment up at the gateway.
func (h *Handler) GetPayment(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("id"))
	if paymentID == "" {
		respondError(c, response.CodeBadRequest, "error.payment_invalid", nil)
		return
	}

	result, err := h.PaymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondPaymentFetchError(c, err)
		return
	}
	response.Success(c, result)
}

// GetInstallments lists credit card installment options for an amount.
func (h *Handler) GetInstallments(c *gin.Context) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(c.Param("amount")), 64)
	if err != nil || amount <= 0 {
		respondError(c, response.CodeBadRequest, "error.payment_invalid", nil)
		return
	}

	options, err := h.PaymentService.Installments(amount)
	if err != nil {
		respondPaymentFetchError(c, err)
		return
	}
	response.Success(c, gin.H{"installments": options})
}
