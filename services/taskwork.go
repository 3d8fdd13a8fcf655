package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskmarket/models"
	"taskmarket/utils"
)

// TaskWork state machine: none -> pending -> {verified | rejected}.
// Both terminal transitions happen exactly once; rejection is tracked by an
// explicit status column so a rejected work can never be re-processed.

// CreateTaskWork records a worker's claim of task completion in pending
// state, earning the task's per-interaction price once verified.
func CreateTaskWork(db *gorm.DB, taskID, workerID uint, proofURL *string) (*models.TaskWork, error) {
	var work models.TaskWork
	err := db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := forUpdate(tx).First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var worker models.User
		if err := tx.First(&worker, workerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if task.Status != "active" {
			return ErrTaskNotActive
		}
		if task.CompletedInteractions >= task.TargetInteractions {
			return ErrTargetReached
		}
		if workerID == task.CreatorID {
			return ErrSelfWork
		}
		var count int64
		if err := tx.Model(&models.TaskWork{}).Where("task_id = ? AND worker_id = ?", taskID, workerID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateWork
		}
		work = models.TaskWork{
			TaskID:      taskID,
			WorkerID:    workerID,
			CoinsEarned: task.CoinsPerInteraction,
			Status:      "pending",
			ProofURL:    proofURL,
			CompletedAt: time.Now(),
		}
		if err := tx.Create(&work).Error; err != nil {
			// the unique (task_id, worker_id) index catches races the
			// count check above cannot see
			if isDuplicateKey(err) {
				return ErrDuplicateWork
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// GetTaskWork loads a single task work.
func GetTaskWork(db *gorm.DB, id uint) (*models.TaskWork, error) {
	var work models.TaskWork
	if err := db.First(&work, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &work, nil
}

// VerifyTaskWork marks a pending work verified, credits the worker, bumps
// the task's completed-interaction counter and completes the task when the
// counter reaches the target. All of it commits or rolls back as one unit.
func VerifyTaskWork(db *gorm.DB, id uint, method string, notes *string) (*models.TaskWork, error) {
	if method != "manual" && method != "automatic" && method != "api_automatic" {
		return nil, ErrInvalidState
	}
	var work models.TaskWork
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&work, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		switch work.Status {
		case "verified":
			return ErrAlreadyVerified
		case "rejected":
			return ErrAlreadyProcessed
		}

		// The task is locked and re-checked before any coins move: pending
		// works can pile up faster than verifications, and a cancelled
		// task's remaining allocation was already refunded to the creator.
		var task models.Task
		if err := forUpdate(tx).First(&task, work.TaskID).Error; err != nil {
			return err
		}
		switch task.Status {
		case "active", "paused":
		default:
			return ErrTaskNotActive
		}
		if task.CompletedInteractions >= task.TargetInteractions {
			return ErrTargetReached
		}

		now := time.Now()
		work.Status = "verified"
		work.VerifiedAt = &now
		work.VerificationMethod = &method
		work.AdminNotes = notes
		if err := tx.Model(&work).Updates(map[string]interface{}{
			"status":              "verified",
			"verified_at":         now,
			"verification_method": method,
			"admin_notes":         notes,
		}).Error; err != nil {
			return err
		}

		if err := Credit(tx, work.WorkerID, work.CoinsEarned); err != nil {
			return err
		}
		trx := models.Transaction{
			UserID:      work.WorkerID,
			Type:        "task_earning",
			Amount:      work.CoinsEarned,
			Status:      "completed",
			ReferenceID: utils.GenerateReferenceID(work.WorkerID),
			Description: fmt.Sprintf("Earning for task #%d", work.TaskID),
			ProcessedAt: &now,
		}
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		task.CompletedInteractions++
		updates := map[string]interface{}{
			"completed_interactions": task.CompletedInteractions,
		}
		if task.CompletedInteractions >= task.TargetInteractions {
			updates["status"] = "completed"
			updates["completed_at"] = now
		}
		return tx.Model(&task).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// RejectTaskWork marks a pending work rejected. Coins are zeroed, verified_at
// stays null and no balance is touched. Rejection is terminal.
func RejectTaskWork(db *gorm.DB, id uint, reason string) (*models.TaskWork, error) {
	var work models.TaskWork
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&work, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if work.Status != "pending" {
			return ErrAlreadyProcessed
		}
		method := "manual_rejection"
		work.Status = "rejected"
		work.CoinsEarned = 0
		work.VerificationMethod = &method
		work.AdminNotes = &reason
		return tx.Model(&work).Updates(map[string]interface{}{
			"status":              "rejected",
			"coins_earned":        0,
			"verification_method": method,
			"admin_notes":         reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// AutoVerifyTaskWork asks the injected interaction checker whether the
// claimed interaction exists on the platform, then verifies with the
// api_automatic method. An unconfirmed interaction leaves the work pending.
func AutoVerifyTaskWork(ctx context.Context, db *gorm.DB, checker InteractionChecker, id uint) (*models.TaskWork, error) {
	work, err := GetTaskWork(db, id)
	if err != nil {
		return nil, err
	}
	switch work.Status {
	case "verified":
		return nil, ErrAlreadyVerified
	case "rejected":
		return nil, ErrAlreadyProcessed
	}
	task, err := GetTask(db, work.TaskID)
	if err != nil {
		return nil, err
	}
	confirmed, err := checker.InteractionConfirmed(ctx, task, work)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	note := "Verified automatically via platform API"
	return VerifyTaskWork(db, id, "api_automatic", &note)
}
