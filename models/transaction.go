package models

import "time"

type Transaction struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	Type              string     `gorm:"size:20;not null" json:"type"`
	Amount            int64      `gorm:"not null" json:"amount"`
	Status            string     `gorm:"size:16;not null;default:'pending'" json:"status"`
	ReferenceID       string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference_id"`
	PaymentMethod     *string    `gorm:"size:50" json:"payment_method,omitempty"`
	ExternalReference *string    `gorm:"size:191" json:"external_reference,omitempty"`
	Description       string     `gorm:"type:text" json:"description"`
	Metadata          *string    `gorm:"type:json" json:"metadata,omitempty"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
