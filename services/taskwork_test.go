package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/models"
)

func TestSubmitWorkRules(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "wcreator@example.com", 1000)
	worker := seedUser(t, db, "wworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 2, 10)

	// creators cannot work their own tasks
	_, err := CreateTaskWork(db, task.ID, creator.ID, nil)
	assert.ErrorIs(t, err, ErrSelfWork)

	proof := "https://cdn.example.com/proofs/1.png"
	work, err := CreateTaskWork(db, task.ID, worker.ID, &proof)
	require.NoError(t, err)
	assert.Equal(t, "pending", work.Status)
	assert.Equal(t, int64(10), work.CoinsEarned)

	// one submission per worker per task
	_, err = CreateTaskWork(db, task.ID, worker.ID, nil)
	assert.ErrorIs(t, err, ErrDuplicateWork)

	// submitting is free: no balance movement until verification
	assert.Equal(t, int64(0), balanceOf(t, db, worker.ID))
}

func TestSubmitWorkOnInactiveTask(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "icreator@example.com", 1000)
	worker := seedUser(t, db, "iworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 2, 10)

	_, err := PauseTask(db, task.ID, creator.ID, false)
	require.NoError(t, err)

	_, err = CreateTaskWork(db, task.ID, worker.ID, nil)
	assert.ErrorIs(t, err, ErrTaskNotActive)
}

func TestVerifyPaysWorkerAndAdvancesTask(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "vcreator@example.com", 1000)
	worker := seedUser(t, db, "vworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 2, 10)

	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)

	verified, err := VerifyTaskWork(db, work.ID, "manual", nil)
	require.NoError(t, err)
	assert.Equal(t, "verified", verified.Status)
	assert.NotNil(t, verified.VerifiedAt)
	require.NotNil(t, verified.VerificationMethod)
	assert.Equal(t, "manual", *verified.VerificationMethod)

	assert.Equal(t, int64(10), balanceOf(t, db, worker.ID))

	var trx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", worker.ID, "task_earning").First(&trx).Error)
	assert.Equal(t, int64(10), trx.Amount)
	assert.Equal(t, "completed", trx.Status)

	reloaded, err := GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CompletedInteractions)
	assert.Equal(t, "active", reloaded.Status)
}

func TestVerifyLastWorkCompletesTask(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "ccreator@example.com", 1000)
	w1 := seedUser(t, db, "cw1@example.com", 0)
	w2 := seedUser(t, db, "cw2@example.com", 0)
	task := seedTask(t, db, creator.ID, 2, 10)

	work1, err := CreateTaskWork(db, task.ID, w1.ID, nil)
	require.NoError(t, err)
	work2, err := CreateTaskWork(db, task.ID, w2.ID, nil)
	require.NoError(t, err)

	_, err = VerifyTaskWork(db, work1.ID, "manual", nil)
	require.NoError(t, err)
	_, err = VerifyTaskWork(db, work2.ID, "manual", nil)
	require.NoError(t, err)

	reloaded, err := GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", reloaded.Status)
	assert.Equal(t, 2, reloaded.CompletedInteractions)
	assert.NotNil(t, reloaded.CompletedAt)
}

func TestVerifyCannotExceedTarget(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "ocreator@example.com", 1000)
	w1 := seedUser(t, db, "ow1@example.com", 0)
	w2 := seedUser(t, db, "ow2@example.com", 0)
	task := seedTask(t, db, creator.ID, 1, 10)

	// pending works can pile up past the target before anyone verifies
	work1, err := CreateTaskWork(db, task.ID, w1.ID, nil)
	require.NoError(t, err)
	work2, err := CreateTaskWork(db, task.ID, w2.ID, nil)
	require.NoError(t, err)

	_, err = VerifyTaskWork(db, work1.ID, "manual", nil)
	require.NoError(t, err)

	// the first verification hit the target; the second must not pay
	_, err = VerifyTaskWork(db, work2.ID, "manual", nil)
	assert.ErrorIs(t, err, ErrTargetReached)
	assert.Equal(t, int64(0), balanceOf(t, db, w2.ID))

	reloaded, err := GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", reloaded.Status)
	assert.Equal(t, 1, reloaded.CompletedInteractions)

	leftover, err := GetTaskWork(db, work2.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", leftover.Status)
}

func TestVerifyOnCancelledTask(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "xcreator@example.com", 1000)
	worker := seedUser(t, db, "xworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 2, 10)

	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)

	_, refund, err := CancelTask(db, task.ID, creator.ID, false)
	require.NoError(t, err)
	require.Equal(t, int64(20), refund)

	// the unused allocation went back to the creator, so the pending work
	// has nothing left to pay from
	_, err = VerifyTaskWork(db, work.ID, "manual", nil)
	assert.ErrorIs(t, err, ErrTaskNotActive)
	assert.Equal(t, int64(0), balanceOf(t, db, worker.ID))
}

func TestVerifyIsTerminal(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "tcreator@example.com", 1000)
	worker := seedUser(t, db, "tworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 5, 10)

	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)

	_, err = VerifyTaskWork(db, work.ID, "manual", nil)
	require.NoError(t, err)

	// verifying again must not double-pay
	_, err = VerifyTaskWork(db, work.ID, "manual", nil)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.Equal(t, int64(10), balanceOf(t, db, worker.ID))

	_, err = RejectTaskWork(db, work.ID, "too late")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRejectZeroesCoinsAndIsTerminal(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "rcreator@example.com", 1000)
	worker := seedUser(t, db, "rworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 5, 10)

	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)

	rejected, err := RejectTaskWork(db, work.ID, "screenshot does not match")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Zero(t, rejected.CoinsEarned)
	require.NotNil(t, rejected.VerificationMethod)
	assert.Equal(t, "manual_rejection", *rejected.VerificationMethod)

	// no payout, no task progress
	assert.Equal(t, int64(0), balanceOf(t, db, worker.ID))
	reloaded, err := GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.CompletedInteractions)

	// a rejected work cannot be verified afterwards
	_, err = VerifyTaskWork(db, work.ID, "manual", nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestVerifyRejectsUnknownMethod(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "mcreator@example.com", 1000)
	worker := seedUser(t, db, "mworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 5, 10)

	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)

	_, err = VerifyTaskWork(db, work.ID, "guesswork", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAutoVerify(t *testing.T) {
	db := newTestDB(t)
	creator := seedUser(t, db, "acreator@example.com", 1000)
	worker := seedUser(t, db, "aworker@example.com", 0)
	task := seedTask(t, db, creator.ID, 5, 10)

	work, err := CreateTaskWork(db, task.ID, worker.ID, nil)
	require.NoError(t, err)

	// unconfirmed interaction leaves the work pending
	_, err = AutoVerifyTaskWork(context.Background(), db, StubInteractionChecker{Confirmed: false}, work.ID)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	pending, err := GetTaskWork(db, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", pending.Status)

	verified, err := AutoVerifyTaskWork(context.Background(), db, StubInteractionChecker{Confirmed: true}, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "verified", verified.Status)
	require.NotNil(t, verified.VerificationMethod)
	assert.Equal(t, "api_automatic", *verified.VerificationMethod)
	assert.Equal(t, int64(10), balanceOf(t, db, worker.ID))
}
