package models

import "time"

// TaskWork is one worker's single attempt at one task. The (task, worker)
// pair is unique at the schema level, not just in application checks.
type TaskWork struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	TaskID             uint       `gorm:"not null;uniqueIndex:idx_task_worker" json:"task_id"`
	WorkerID           uint       `gorm:"not null;uniqueIndex:idx_task_worker" json:"worker_id"`
	CoinsEarned        int64      `gorm:"not null" json:"coins_earned"`
	Status             string     `gorm:"size:16;default:'pending'" json:"status"`
	ProofURL           *string    `gorm:"type:varchar(500)" json:"proof_url,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	VerificationMethod *string    `gorm:"size:24" json:"verification_method,omitempty"`
	AdminNotes         *string    `gorm:"type:text" json:"admin_notes,omitempty"`
	CompletedAt        time.Time  `json:"completed_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (TaskWork) TableName() string {
	return "task_works"
}
