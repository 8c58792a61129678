package worker

import (
	"context"
	"errors"
	"time"

	"github.com/plktk/ticketpay/internal/config"
	"github.com/plktk/ticketpay/internal/idempotency"
	"github.com/plktk/ticketpay/internal/logger"
	"github.com/plktk/ticketpay/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	guardSweepInterval = time.Minute
)

// Service runs the asynq consumer.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the queue consumer service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer until the server shuts down.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil {
		if guard, ok := s.consumer.Guard.(*idempotency.MemoryGuard); ok {
			go s.runGuardSweepLoop(ctx, guard)
		}
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runGuardSweepLoop drops expired dedupe entries so the in-process
// guard does not grow without bound.
func (s *Service) runGuardSweepLoop(ctx context.Context, guard *idempotency.MemoryGuard) {
	if guard == nil {
		return
	}
	runOnce := func() {
		if removed := guard.Sweep(); removed > 0 {
			logger.Debugw("worker_guard_sweep", "removed", removed)
		}
	}
	runOnce()

	ticker := time.NewTicker(guardSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
