package repository

import (
	"gorm.io/gorm"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

type OutboxRepository interface {
	FindPending(limit int) ([]model.CartClearTask, error)
	MarkDone(id uint) error
	MarkFailed(id uint, lastError string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) FindPending(limit int) ([]model.CartClearTask, error) {
	var tasks []model.CartClearTask
	if err := r.db.Where("status = ?", model.CartClearPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		logger.Error("Failed to find pending cart clear tasks in database", err)
		return nil, err
	}
	return tasks, nil
}

func (r *outboxRepository) MarkDone(id uint) error {
	if err := r.db.Model(&model.CartClearTask{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.CartClearDone,
			"last_error": "",
		}).Error; err != nil {
		logger.Error("Failed to mark cart clear task done in database", err, map[string]interface{}{
			"task_id": id,
		})
		return err
	}
	return nil
}

func (r *outboxRepository) MarkFailed(id uint, lastError string) error {
	if err := r.db.Model(&model.CartClearTask{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error; err != nil {
		logger.Error("Failed to record cart clear task failure in database", err, map[string]interface{}{
			"task_id": id,
		})
		return err
	}
	return nil
}
