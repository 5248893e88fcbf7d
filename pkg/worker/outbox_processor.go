package worker

import (
	"context"
	"time"

	"github.com/careflow/clinic-api/config"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	"github.com/careflow/clinic-api/pkg/logger"
	"github.com/careflow/clinic-api/pkg/messaging"
)

// OutboxProcessor drains pending outbox rows and publishes them. Events are
// published at least once; consumers must tolerate duplicates.
type OutboxProcessor struct {
	repo   repository.OutboxRepository
	broker messaging.Broker
	cfg    config.OutboxConfig
	logger *logger.Logger
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	cfg config.OutboxConfig,
	logger *logger.Logger,
) *OutboxProcessor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &OutboxProcessor{
		repo:   repo,
		broker: broker,
		cfg:    cfg,
		logger: logger,
	}
}

// Start polls until the context is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "outbox batch failed")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	events, err := p.repo.GetPendingWithLock(ctx, p.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := p.publishWithRetry(ctx, event); err != nil {
			msg := err.Error()
			if uerr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &msg); uerr != nil {
				p.logger.Error(uerr, "failed to mark outbox event failed", "event_id", event.ID)
			}
			continue
		}
		if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
			p.logger.Error(err, "failed to mark outbox event processed", "event_id", event.ID)
		}
	}
	return nil
}

func (p *OutboxProcessor) publishWithRetry(ctx context.Context, event *model.OutboxEvent) error {
	msg := messaging.Message{
		Type:    event.EventType,
		Payload: event.Payload,
	}

	var lastErr error
	for attempt := 0; attempt < p.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.RetryDelay):
			}
		}
		if lastErr = p.broker.Publish(ctx, event.EventType, msg); lastErr == nil {
			return nil
		}
		p.logger.Error(lastErr, "outbox publish failed",
			"event_id", event.ID, "attempt", attempt+1)
	}
	return lastErr
}
