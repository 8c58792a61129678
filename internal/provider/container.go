package provider

import (
	"time"

	"github.com/plktk/ticketpay/internal/cache"
	"github.com/plktk/ticketpay/internal/config"
	"github.com/plktk/ticketpay/internal/gateway/mercadopago"
	"github.com/plktk/ticketpay/internal/idempotency"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/models"
	"github.com/plktk/ticketpay/internal/queue"
	"github.com/plktk/ticketpay/internal/repository"
	"github.com/plktk/ticketpay/internal/service"
)

// Container holds the wired dependencies shared by the HTTP layer and
// the queue workers.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Guard       idempotency.Guard

	// Repositories
	OrderRepo       repository.OrderRepository
	TransactionRepo repository.TransactionRepository
	TicketRepo      repository.TicketRepository
	AffiliateRepo   repository.AffiliateRepository

	// Services
	ReconcileService *service.ReconcileService
	TicketService    *service.TicketService
	AffiliateService *service.AffiliateService
	PaymentService   *service.PaymentService
	WebhookService   *service.WebhookService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initGuard()
	c.initRepositories()
	c.initServices()

	return c
}

// initGuard picks the dedupe backend. Redis survives restarts; the
// in-process guard is the fallback when the cache is disabled.
func (c *Container) initGuard() {
	if cache.Enabled() {
		c.Guard = idempotency.NewRedisGuard(cache.Client(), "webhook")
		return
	}
	logger.Warnw("provider_guard_memory_fallback")
	c.Guard = idempotency.NewMemoryGuard()
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.TicketRepo = repository.NewTicketRepository(db)
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
}

func (c *Container) initServices() {
	gatewayCfg := &mercadopago.Config{
		AccessToken: c.Config.MercadoPago.AccessToken,
		BaseURL:     c.Config.MercadoPago.BaseURL,
		NotifyURL:   c.Config.MercadoPago.WebhookURL,
		TimeoutMS:   c.Config.MercadoPago.TimeoutMS,
	}

	c.ReconcileService = service.NewReconcileService(c.OrderRepo, c.TransactionRepo)
	c.TicketService = service.NewTicketService(c.TicketRepo)
	c.AffiliateService = service.NewAffiliateService(c.AffiliateRepo)
	c.PaymentService = service.NewPaymentService(gatewayCfg)
	c.WebhookService = service.NewWebhookService(
		c.Guard,
		gatewayCfg,
		c.ReconcileService,
		c.TicketService,
		c.AffiliateService,
		time.Duration(c.Config.Webhook.DedupeTTLMinutes)*time.Minute,
	)
}
