package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"taskmarket/models"
)

// The ledger is the single path through which coin_balance changes. Every
// caller (task allocation, work verification, transaction processing) goes
// through Credit/Debit inside its own DB transaction so the non-negativity
// invariant is enforced identically everywhere. Activity logging is the
// caller's responsibility, not the ledger's.

// Credit increases userID's balance by amount. amount must be positive.
func Credit(tx *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	var user models.User
	if err := forUpdate(tx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return tx.Model(&user).Updates(map[string]interface{}{
		"coin_balance": gorm.Expr("coin_balance + ?", amount),
		"updated_at":   time.Now(),
	}).Error
}

// Debit decreases userID's balance by amount, failing with
// ErrInsufficientBalance when the locked balance is below amount.
func Debit(tx *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	var user models.User
	if err := forUpdate(tx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.CoinBalance < amount {
		return ErrInsufficientBalance
	}
	return tx.Model(&user).Updates(map[string]interface{}{
		"coin_balance": gorm.Expr("coin_balance - ?", amount),
		"updated_at":   time.Now(),
	}).Error
}

// AdminSetBalance overrides a user's balance directly. This bypasses the
// credit/debit path and exists only for the admin override endpoint; the
// caller must write an activity log entry with the reason.
func AdminSetBalance(db *gorm.DB, userID uint, balance int64) error {
	if balance < 0 {
		return ErrInvalidAmount
	}
	res := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"coin_balance": balance,
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
