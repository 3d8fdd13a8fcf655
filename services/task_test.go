package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/models"
)

func TestCreateTaskDebitsFullAllocation(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "creator@example.com", 1000)

	task := seedTask(t, db, creator.ID, 10, 5)

	assert.Equal(t, int64(950), balanceOf(t, db, creator.ID))
	assert.Equal(t, int64(50), task.TotalCoinsAllocated)
	assert.Equal(t, "active", task.Status)
	assert.Equal(t, 0, task.CompletedInteractions)

	// allocation recorded as a completed task_payment transaction
	var trx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", creator.ID, "task_payment").First(&trx).Error)
	assert.Equal(t, int64(50), trx.Amount)
	assert.Equal(t, "completed", trx.Status)
	assert.NotNil(t, trx.ProcessedAt)
}

func TestCreateTaskInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "broke@example.com", 49)

	_, err := CreateTask(db, creator.ID, TaskSpec{
		Platform:            "tiktok",
		InteractionType:     "follow",
		TargetURL:           "https://tiktok.com/@someone",
		TargetInteractions:  10,
		CoinsPerInteraction: 5,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// nothing committed
	assert.Equal(t, int64(49), balanceOf(t, db, creator.ID))
	var taskCount, trxCount int64
	db.Model(&models.Task{}).Count(&taskCount)
	db.Model(&models.Transaction{}).Count(&trxCount)
	assert.Zero(t, taskCount)
	assert.Zero(t, trxCount)
}

func TestCreateTaskRejectsInvalidNumbers(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "invalid@example.com", 1000)

	_, err := CreateTask(db, creator.ID, TaskSpec{TargetInteractions: 0, CoinsPerInteraction: 5})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = CreateTask(db, creator.ID, TaskSpec{TargetInteractions: 5, CoinsPerInteraction: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPauseResumeTransitions(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "pauser@example.com", 1000)
	task := seedTask(t, db, creator.ID, 10, 5)

	paused, err := PauseTask(db, task.ID, creator.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.Status)

	// pausing twice is invalid
	_, err = PauseTask(db, task.ID, creator.ID, false)
	assert.ErrorIs(t, err, ErrInvalidState)

	resumed, err := ResumeTask(db, task.ID, creator.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "active", resumed.Status)
}

func TestTaskOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "owner@example.com", 1000)
	other := seedUser(t, db, "other@example.com", 1000)
	task := seedTask(t, db, creator.ID, 10, 5)

	_, err := PauseTask(db, task.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = CancelTask(db, task.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// admin override works regardless of ownership
	_, err = PauseTask(db, task.ID, other.ID, true)
	assert.NoError(t, err)
}

func TestCancelRefundsUnusedAllocation(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "cancel@example.com", 1000)
	worker := seedUser(t, db, "cancel-worker@example.com", 0)
	task := seedTask(t, db, creator.ID, 10, 5)
	require.Equal(t, int64(950), balanceOf(t, db, creator.ID))

	// one verified interaction consumes 5 coins of the allocation
	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)
	_, err = VerifyTaskWork(db, work.ID, "manual", nil)
	require.NoError(t, err)

	cancelled, refund, err := CancelTask(db, task.ID, creator.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, int64(45), refund)
	assert.Equal(t, int64(995), balanceOf(t, db, creator.ID))

	// refund appears in the transaction history
	var refundTrx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND amount = ?", creator.ID, refund).First(&refundTrx).Error)
	assert.Equal(t, "completed", refundTrx.Status)
}

func TestCancelCancelledTaskFails(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "recancel@example.com", 1000)
	task := seedTask(t, db, creator.ID, 10, 5)

	_, _, err := CancelTask(db, task.ID, creator.ID, false)
	require.NoError(t, err)

	_, _, err = CancelTask(db, task.ID, creator.ID, false)
	assert.ErrorIs(t, err, ErrInvalidState)
	// no double refund
	assert.Equal(t, int64(1000), balanceOf(t, db, creator.ID))
}

func TestCreateTaskPersistsVerificationOff(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "noverif@example.com", 1000)
	task, err := CreateTask(db, creator.ID, TaskSpec{
		Platform:            "tiktok",
		InteractionType:     "follow",
		TargetURL:           "https://tiktok.com/@someone",
		TargetInteractions:  2,
		CoinsPerInteraction: 5,
	})
	require.NoError(t, err)

	// the explicit false must survive the insert, not fall back to the
	// column default
	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.NotNil(t, reloaded.VerificationRequired)
	assert.False(t, *reloaded.VerificationRequired)
}

func TestUpdateTaskMutableFieldsOnly(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "updater@example.com", 1000)
	task := seedTask(t, db, creator.ID, 10, 5)

	newURL := "https://instagram.com/p/updated"
	off := false
	updated, err := UpdateTask(db, task.ID, creator.ID, false, &newURL, &off)
	require.NoError(t, err)

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, updated.ID).Error)
	assert.Equal(t, newURL, reloaded.TargetURL)
	require.NotNil(t, reloaded.VerificationRequired)
	assert.False(t, *reloaded.VerificationRequired)
	// allocation figures untouched
	assert.Equal(t, int64(50), reloaded.TotalCoinsAllocated)
}
