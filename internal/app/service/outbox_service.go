package service

import (
	"context"

	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

const sweepBatchSize = 50

// OutboxService retries cart clears that failed after order commit. The
// clear is idempotent so reprocessing a task that already succeeded is
// harmless.
type OutboxService interface {
	ProcessPending(ctx context.Context) (int, error)
}

type outboxService struct {
	outboxRepo repository.OutboxRepository
	cartRepo   repository.CartRepository
}

func NewOutboxService(outboxRepo repository.OutboxRepository, cartRepo repository.CartRepository) OutboxService {
	return &outboxService{
		outboxRepo: outboxRepo,
		cartRepo:   cartRepo,
	}
}

func (s *outboxService) ProcessPending(ctx context.Context) (int, error) {
	tasks, err := s.outboxRepo.FindPending(sweepBatchSize)
	if err != nil {
		logger.Error("Failed to fetch pending cart clear tasks", err)
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	logger.Info("Processing pending cart clear tasks", map[string]interface{}{
		"count": len(tasks),
	})

	done := 0
	for _, task := range tasks {
		if err := s.cartRepo.Clear(ctx, task.UserID); err != nil {
			logger.Error("Cart clear retry failed", err, map[string]interface{}{
				"task_id":  task.ID,
				"user_id":  task.UserID,
				"order_id": task.OrderID,
				"attempts": task.Attempts,
			})
			if markErr := s.outboxRepo.MarkFailed(task.ID, err.Error()); markErr != nil {
				logger.Error("Failed to record cart clear retry failure", markErr, map[string]interface{}{
					"task_id": task.ID,
				})
			}
			continue
		}
		if err := s.outboxRepo.MarkDone(task.ID); err != nil {
			logger.Error("Failed to mark cart clear task done", err, map[string]interface{}{
				"task_id": task.ID,
			})
			continue
		}
		done++
	}

	logger.Info("Cart clear sweep finished", map[string]interface{}{
		"processed": len(tasks),
		"done":      done,
	})
	return done, nil
}
