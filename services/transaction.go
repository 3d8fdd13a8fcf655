package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskmarket/models"
	"taskmarket/utils"
)

// TransactionSpec carries the validated input for transaction creation.
type TransactionSpec struct {
	Type          string
	Amount        int64
	PaymentMethod *string
	Description   string
}

// CreateTransaction inserts a pending transaction. Withdrawals are
// pre-checked against the current balance and the minimum-withdrawal
// setting; the authoritative balance check happens again at processing time.
func CreateTransaction(db *gorm.DB, userID uint, spec TransactionSpec) (*models.Transaction, error) {
	if spec.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if spec.Type == "withdrawal" {
		minWithdrawal, err := GetSettingInt64(db, "min_withdrawal_coins")
		if err != nil {
			return nil, err
		}
		if spec.Amount < minWithdrawal {
			return nil, ErrBelowMinWithdrawal
		}
		if user.CoinBalance < spec.Amount {
			return nil, ErrInsufficientBalance
		}
	}
	trx := models.Transaction{
		UserID:        userID,
		Type:          spec.Type,
		Amount:        spec.Amount,
		Status:        "pending",
		ReferenceID:   utils.GenerateReferenceID(userID),
		PaymentMethod: spec.PaymentMethod,
		Description:   spec.Description,
	}
	if err := db.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

// GetTransaction loads a single transaction.
func GetTransaction(db *gorm.DB, id uint) (*models.Transaction, error) {
	var trx models.Transaction
	if err := db.First(&trx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// GetTransactionByReference loads a transaction by its opaque reference id,
// the handle payment-gateway callbacks carry.
func GetTransactionByReference(db *gorm.DB, referenceID string) (*models.Transaction, error) {
	var trx models.Transaction
	if err := db.Where("reference_id = ?", referenceID).First(&trx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// ProcessTopup credits the user and completes a pending topup. Crediting and
// the status flip commit together.
func ProcessTopup(db *gorm.DB, id uint) (*models.Transaction, error) {
	var trx models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&trx, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if trx.Type != "topup" {
			return ErrWrongType
		}
		if trx.Status != "pending" {
			return ErrNotPending
		}
		if err := Credit(tx, trx.UserID, trx.Amount); err != nil {
			return err
		}
		now := time.Now()
		trx.Status = "completed"
		trx.ProcessedAt = &now
		return tx.Model(&trx).Updates(map[string]interface{}{
			"status":       "completed",
			"processed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// ProcessWithdrawal re-checks the balance and debits the user. When the
// balance no longer covers the amount the transaction is explicitly marked
// failed (that mark commits) and ErrInsufficientBalance is returned.
func ProcessWithdrawal(db *gorm.DB, id uint) (*models.Transaction, error) {
	var trx models.Transaction
	insufficient := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&trx, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if trx.Type != "withdrawal" {
			return ErrWrongType
		}
		if trx.Status != "pending" {
			return ErrNotPending
		}
		var user models.User
		if err := forUpdate(tx).First(&user, trx.UserID).Error; err != nil {
			return err
		}
		now := time.Now()
		if user.CoinBalance < trx.Amount {
			// balance moved since creation: fail the transaction rather
			// than leaving it pending, then report the error
			insufficient = true
			trx.Status = "failed"
			trx.ProcessedAt = &now
			return tx.Model(&trx).Updates(map[string]interface{}{
				"status":       "failed",
				"processed_at": now,
			}).Error
		}
		if err := Debit(tx, trx.UserID, trx.Amount); err != nil {
			return err
		}
		trx.Status = "completed"
		trx.ProcessedAt = &now
		return tx.Model(&trx).Updates(map[string]interface{}{
			"status":       "completed",
			"processed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	if insufficient {
		return &trx, ErrInsufficientBalance
	}
	return &trx, nil
}

// UpdateTransaction is the generic status transition used by gateway
// callbacks. It never touches the balance: a topup marked completed through
// this path without a matching ProcessTopup breaks the ledger invariant, so
// callback handlers must route topup completions through ProcessTopup.
func UpdateTransaction(db *gorm.DB, id uint, status string, externalRef *string) (*models.Transaction, error) {
	switch status {
	case "completed", "failed", "cancelled":
	default:
		return nil, ErrInvalidState
	}
	var trx models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&trx, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if trx.Status != "pending" {
			return ErrNotPending
		}
		updates := map[string]interface{}{"status": status}
		if externalRef != nil {
			updates["external_reference"] = *externalRef
			trx.ExternalReference = externalRef
		}
		if status == "completed" || status == "failed" {
			now := time.Now()
			updates["processed_at"] = now
			trx.ProcessedAt = &now
		}
		trx.Status = status
		return tx.Model(&trx).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// PurchaseCoinPackage creates a pending topup for the package's base+bonus
// coins. No coins move until the gateway confirms and ProcessTopup runs.
func PurchaseCoinPackage(db *gorm.DB, packageID, userID uint, paymentMethod string) (*models.Transaction, error) {
	var pkg models.CoinPackage
	if err := db.Where("id = ? AND active = ?", packageID, true).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	meta, err := json.Marshal(map[string]interface{}{
		"package_id":  pkg.ID,
		"coins":       pkg.Coins,
		"bonus_coins": pkg.BonusCoins,
		"price_cents": pkg.PriceCents,
	})
	if err != nil {
		return nil, err
	}
	metaStr := string(meta)
	trx := models.Transaction{
		UserID:        userID,
		Type:          "topup",
		Amount:        pkg.Coins + pkg.BonusCoins,
		Status:        "pending",
		ReferenceID:   utils.GenerateReferenceID(userID),
		PaymentMethod: &paymentMethod,
		Description:   fmt.Sprintf("Purchase of package %q", pkg.Name),
		Metadata:      &metaStr,
	}
	if err := db.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

// TransactionStats aggregates coin movement. Totals include completed
// transactions only; pending ones are counted but never summed.
type TransactionStats struct {
	TotalTopup       int64 `json:"total_topup"`
	TotalWithdrawal  int64 `json:"total_withdrawal"`
	TotalTaskPayment int64 `json:"total_task_payment"`
	TotalTaskEarning int64 `json:"total_task_earning"`
	TotalBonus       int64 `json:"total_bonus"`
	PendingCount     int64 `json:"pending_count"`
}

// GetTransactionStats computes stats, optionally scoped to one user.
func GetTransactionStats(db *gorm.DB, userID *uint) (*TransactionStats, error) {
	stats := &TransactionStats{}
	scoped := func(q *gorm.DB) *gorm.DB {
		if userID != nil {
			return q.Where("user_id = ?", *userID)
		}
		return q
	}
	sums := []struct {
		txType string
		dest   *int64
	}{
		{"topup", &stats.TotalTopup},
		{"withdrawal", &stats.TotalWithdrawal},
		{"task_payment", &stats.TotalTaskPayment},
		{"task_earning", &stats.TotalTaskEarning},
		{"bonus", &stats.TotalBonus},
	}
	for _, s := range sums {
		err := scoped(db.Model(&models.Transaction{})).
			Where("type = ? AND status = ?", s.txType, "completed").
			Select("COALESCE(SUM(amount),0)").Scan(s.dest).Error
		if err != nil {
			return nil, err
		}
	}
	err := scoped(db.Model(&models.Transaction{})).
		Where("status = ?", "pending").
		Count(&stats.PendingCount).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ExpireStalePendingTopups cancels pending topups the gateway never
// confirmed. Driven by the cron endpoint, not an in-process scheduler.
func ExpireStalePendingTopups(db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := db.Model(&models.Transaction{}).
		Where("type = ? AND status = ? AND created_at < ?", "topup", "pending", cutoff).
		Update("status", "cancelled")
	return res.RowsAffected, res.Error
}
