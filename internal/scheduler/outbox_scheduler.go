package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"storefront-backend/internal/app/service"
	"storefront-backend/pkg/logger"
)

const sweepTimeout = 30 * time.Second

// OutboxScheduler periodically retries cart clear tasks whose inline
// execution failed after the order transaction committed.
type OutboxScheduler struct {
	cron          *cron.Cron
	outboxService service.OutboxService
}

func NewOutboxScheduler(outboxService service.OutboxService) *OutboxScheduler {
	return &OutboxScheduler{
		cron:          cron.New(),
		outboxService: outboxService,
	}
}

func (s *OutboxScheduler) Start() error {
	// sweep every minute; the batch is small so overlap is not a concern
	_, err := s.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		processed, err := s.outboxService.ProcessPending(ctx)
		if err != nil {
			logger.Error("Outbox sweep failed", err)
			return
		}
		if processed > 0 {
			logger.Info("Outbox sweep completed", map[string]interface{}{
				"processed": processed,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to register outbox sweep job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Outbox scheduler started (every minute)", nil)

	return nil
}

func (s *OutboxScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Outbox scheduler stopped", nil)
}
