package models

import "time"

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Email           string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"size:255;not null" json:"-"`
	Role            string    `gorm:"size:16;default:'user'" json:"role"`
	Status          string    `gorm:"size:16;default:'active'" json:"status"`
	CoinBalance     int64     `gorm:"not null;default:0" json:"coin_balance"`
	InstagramHandle *string   `gorm:"size:100" json:"instagram_handle,omitempty"`
	TiktokHandle    *string   `gorm:"size:100" json:"tiktok_handle,omitempty"`
	TelegramID      *string   `gorm:"size:64" json:"telegram_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
