package models

import "time"

// CoinPackage price is persisted as integer minor-currency units (cents);
// conversion to the decimal major unit happens only at the API boundary.
type CoinPackage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Coins      int64     `gorm:"not null" json:"coins"`
	BonusCoins int64     `gorm:"not null;default:0" json:"bonus_coins"`
	PriceCents int64     `gorm:"not null" json:"-"`
	// pointer so an explicit false survives Create; a plain bool is
	// dropped as the zero value and the column falls back to its default
	Active     *bool     `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (CoinPackage) TableName() string {
	return "coin_packages"
}
