package router

import (
	"github.com/plktk/ticketpay/internal/config"
	publichandlers "github.com/plktk/ticketpay/internal/http/handlers/public"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine and registers routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		payments := apiV1.Group("/payments")
		{
			payments.POST("", publicHandler.CreatePayment)
			payments.GET("/installments/:amount", publicHandler.GetInstallments)
			payments.POST("/webhook", publicHandler.PaymentWebhook)
			payments.GET("/:id", publicHandler.GetPayment)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
