package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskmarket/models"
	"taskmarket/utils"
)

// TaskSpec carries the validated input for task creation.
type TaskSpec struct {
	Platform             string
	InteractionType      string
	TargetURL            string
	TargetInteractions   int
	CoinsPerInteraction  int64
	VerificationRequired bool
}

// CreateTask reserves the task's maximum payout from the creator's balance
// up front. Debit and insert run in one DB transaction: if the insert fails
// the debit is rolled back with it.
func CreateTask(db *gorm.DB, creatorID uint, spec TaskSpec) (*models.Task, error) {
	if spec.TargetInteractions <= 0 || spec.CoinsPerInteraction <= 0 {
		return nil, ErrInvalidAmount
	}
	totalCost := int64(spec.TargetInteractions) * spec.CoinsPerInteraction

	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := Debit(tx, creatorID, totalCost); err != nil {
			return err
		}
		task = models.Task{
			CreatorID:             creatorID,
			Platform:              spec.Platform,
			InteractionType:       spec.InteractionType,
			TargetURL:             spec.TargetURL,
			TargetInteractions:    spec.TargetInteractions,
			CoinsPerInteraction:   spec.CoinsPerInteraction,
			TotalCoinsAllocated:   totalCost,
			CompletedInteractions: 0,
			Status:                "active",
			VerificationRequired:  &spec.VerificationRequired,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		now := time.Now()
		trx := models.Transaction{
			UserID:      creatorID,
			Type:        "task_payment",
			Amount:      totalCost,
			Status:      "completed",
			ReferenceID: utils.GenerateReferenceID(creatorID),
			Description: fmt.Sprintf("Allocation for %s %s task #%d", spec.Platform, spec.InteractionType, task.ID),
			ProcessedAt: &now,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask loads a single task.
func GetTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// UpdateTask changes the mutable attributes of a task. Allocation figures
// are immutable for the task's life.
func UpdateTask(db *gorm.DB, id uint, actorID uint, isAdmin bool, targetURL *string, verificationRequired *bool) (*models.Task, error) {
	task, err := GetTask(db, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && task.CreatorID != actorID {
		return nil, ErrForbidden
	}
	if task.Status != "active" && task.Status != "paused" {
		return nil, ErrInvalidState
	}
	updates := map[string]interface{}{}
	if targetURL != nil {
		updates["target_url"] = *targetURL
	}
	if verificationRequired != nil {
		updates["verification_required"] = *verificationRequired
	}
	if len(updates) == 0 {
		return task, nil
	}
	if err := db.Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// PauseTask moves an active task to paused.
func PauseTask(db *gorm.DB, id uint, actorID uint, isAdmin bool) (*models.Task, error) {
	return transitionTask(db, id, actorID, isAdmin, "active", "paused")
}

// ResumeTask moves a paused task back to active.
func ResumeTask(db *gorm.DB, id uint, actorID uint, isAdmin bool) (*models.Task, error) {
	return transitionTask(db, id, actorID, isAdmin, "paused", "active")
}

func transitionTask(db *gorm.DB, id uint, actorID uint, isAdmin bool, from, to string) (*models.Task, error) {
	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !isAdmin && task.CreatorID != actorID {
			return ErrForbidden
		}
		if task.Status != from {
			return ErrInvalidState
		}
		task.Status = to
		return tx.Model(&task).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CancelTask cancels an active or paused task and refunds the unused
// allocation, coins_per_interaction * (target - completed), to the creator.
func CancelTask(db *gorm.DB, id uint, actorID uint, isAdmin bool) (*models.Task, int64, error) {
	var task models.Task
	var refund int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !isAdmin && task.CreatorID != actorID {
			return ErrForbidden
		}
		if task.Status != "active" && task.Status != "paused" {
			return ErrInvalidState
		}
		refund = task.CoinsPerInteraction * int64(task.TargetInteractions-task.CompletedInteractions)
		if err := tx.Model(&task).Update("status", "cancelled").Error; err != nil {
			return err
		}
		task.Status = "cancelled"
		if refund == 0 {
			return nil
		}
		if err := Credit(tx, task.CreatorID, refund); err != nil {
			return err
		}
		now := time.Now()
		trx := models.Transaction{
			UserID:      task.CreatorID,
			Type:        "task_payment",
			Amount:      refund,
			Status:      "completed",
			ReferenceID: utils.GenerateReferenceID(task.CreatorID),
			Description: fmt.Sprintf("Refund of unused allocation for task #%d", task.ID),
			ProcessedAt: &now,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &task, refund, nil
}
