package models

import "time"

// ActivityLog is append-only; rows are never updated or deleted.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Entity    string    `gorm:"size:50" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Detail    string    `gorm:"type:text" json:"detail"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
