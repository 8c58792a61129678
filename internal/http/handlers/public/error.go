package public

import (
	"errors"

	handlershared "github.com/plktk/ticketpay/internal/http/handlers/shared"
	"github.com/plktk/ticketpay/internal/http/response"
	"github.com/plktk/ticketpay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// mappedHandlerError maps a service error to an envelope code and
// message.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "error.payment_invalid"},
	{target: service.ErrGatewayRequestFailed, code: response.CodeBadRequest, msg: "error.payment_gateway_request_failed"},
}

var paymentFetchErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "error.payment_invalid"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "error.payment_not_found"},
	{target: service.ErrGatewayRequestFailed, code: response.CodeBadRequest, msg: "error.payment_gateway_request_failed"},
}

func respondPaymentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentCreateErrorRules, response.CodeInternal, "error.payment_create_failed")
}

func respondPaymentFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentFetchErrorRules, response.CodeInternal, "error.payment_fetch_failed")
}
