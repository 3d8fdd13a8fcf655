package models

import "time"

type Task struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	CreatorID             uint       `gorm:"not null;index" json:"creator_id"`
	Platform              string     `gorm:"size:20;not null" json:"platform"`
	InteractionType       string     `gorm:"size:20;not null" json:"interaction_type"`
	TargetURL             string     `gorm:"type:varchar(500);not null" json:"target_url"`
	TargetInteractions    int        `gorm:"not null" json:"target_interactions"`
	CoinsPerInteraction   int64      `gorm:"not null" json:"coins_per_interaction"`
	TotalCoinsAllocated   int64      `gorm:"not null" json:"total_coins_allocated"`
	CompletedInteractions int        `gorm:"not null;default:0" json:"completed_interactions"`
	Status                string     `gorm:"size:16;default:'active'" json:"status"`
	// pointer for the same reason as CoinPackage.Active: an explicit false
	// must reach the insert instead of the column default
	VerificationRequired  *bool      `gorm:"not null;default:true" json:"verification_required"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
