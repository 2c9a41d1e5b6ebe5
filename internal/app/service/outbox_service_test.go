package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

func TestOutboxService_ProcessPending(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	cartRepo := repository.NewCartRepository(rdb)
	outboxRepo := repository.NewOutboxRepository(testDB)
	outboxService := NewOutboxService(outboxRepo, cartRepo)

	// A cart left over from an order whose inline clear never ran
	cart := &model.Cart{
		UserID: 7,
		Items:  []model.CartItem{{ProductID: 1, Name: "Leftover", Price: 10, Quantity: 1}},
	}
	require.NoError(t, cartRepo.Save(context.Background(), cart))

	task := &model.CartClearTask{OrderID: 1, UserID: 7, Status: model.CartClearPending}
	require.NoError(t, testDB.Create(task).Error)

	done, err := outboxService.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, done)

	// Cart cleared and task closed
	cleared, err := cartRepo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, cleared.IsEmpty())

	var updated model.CartClearTask
	testDB.First(&updated, task.ID)
	assert.Equal(t, model.CartClearDone, updated.Status)
}

func TestOutboxService_ProcessPending_NothingToDo(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	outboxService := NewOutboxService(repository.NewOutboxRepository(testDB), repository.NewCartRepository(rdb))

	done, err := outboxService.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, done)
}

func TestOutboxService_ProcessPending_SkipsDoneTasks(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	rdb := setupTestRedis(t)
	cartRepo := repository.NewCartRepository(rdb)
	outboxService := NewOutboxService(repository.NewOutboxRepository(testDB), cartRepo)

	task := &model.CartClearTask{OrderID: 2, UserID: 8, Status: model.CartClearDone}
	require.NoError(t, testDB.Create(task).Error)

	done, err := outboxService.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, done)
}
