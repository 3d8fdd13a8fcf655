package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/models"
)

func TestProcessTopupCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "topup@example.com", 0)

	trx, err := CreateTransaction(db, user.ID, TransactionSpec{
		Type:        "topup",
		Amount:      200,
		Description: "Manual topup",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", trx.Status)
	assert.NotEmpty(t, trx.ReferenceID)
	assert.Equal(t, int64(0), balanceOf(t, db, user.ID))

	processed, err := ProcessTopup(db, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", processed.Status)
	assert.NotNil(t, processed.ProcessedAt)
	assert.Equal(t, int64(200), balanceOf(t, db, user.ID))

	// a second processing attempt must not credit again
	_, err = ProcessTopup(db, trx.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, int64(200), balanceOf(t, db, user.ID))
}

func TestProcessTopupWrongType(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "wrongtype@example.com", 500)

	trx, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "withdrawal", Amount: 150})
	require.NoError(t, err)

	_, err = ProcessTopup(db, trx.ID)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestWithdrawalBelowMinimum(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "min@example.com", 500)

	// default min_withdrawal_coins is 100
	_, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "withdrawal", Amount: 99})
	assert.ErrorIs(t, err, ErrBelowMinWithdrawal)
}

func TestWithdrawalNeedsCoveringBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "cover@example.com", 120)

	_, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "withdrawal", Amount: 121})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestProcessWithdrawalDebits(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "wd@example.com", 500)

	trx, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "withdrawal", Amount: 150})
	require.NoError(t, err)
	// creation only reserves intent, not coins
	assert.Equal(t, int64(500), balanceOf(t, db, user.ID))

	processed, err := ProcessWithdrawal(db, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", processed.Status)
	assert.Equal(t, int64(350), balanceOf(t, db, user.ID))
}

func TestProcessWithdrawalFailsWhenBalanceMoved(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "drained@example.com", 500)

	trx, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "withdrawal", Amount: 400})
	require.NoError(t, err)

	// the balance drops between request and processing
	require.NoError(t, Debit(db, user.ID, 200))

	failed, err := ProcessWithdrawal(db, trx.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	require.NotNil(t, failed)
	assert.Equal(t, "failed", failed.Status)
	assert.NotNil(t, failed.ProcessedAt)
	// no partial debit
	assert.Equal(t, int64(300), balanceOf(t, db, user.ID))

	// the failed mark is committed, so reprocessing is refused
	_, err = ProcessWithdrawal(db, trx.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestUpdateTransactionNeverMovesCoins(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "upd@example.com", 0)

	trx, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "topup", Amount: 300})
	require.NoError(t, err)

	ref := "GW-12345"
	updated, err := UpdateTransaction(db, trx.ID, "failed", &ref)
	require.NoError(t, err)
	assert.Equal(t, "failed", updated.Status)
	require.NotNil(t, updated.ExternalReference)
	assert.Equal(t, ref, *updated.ExternalReference)
	assert.Equal(t, int64(0), balanceOf(t, db, user.ID))

	_, err = UpdateTransaction(db, trx.ID, "completed", nil)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = UpdateTransaction(db, trx.ID, "bogus", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPurchaseCoinPackage(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "pkg@example.com", 0)
	pkg := models.CoinPackage{Name: "Starter", Coins: 500, BonusCoins: 50, PriceCents: 999, Active: boolPtr(true)}
	require.NoError(t, db.Create(&pkg).Error)

	trx, err := PurchaseCoinPackage(db, pkg.ID, user.ID, "qris")
	require.NoError(t, err)
	assert.Equal(t, "topup", trx.Type)
	assert.Equal(t, "pending", trx.Status)
	assert.Equal(t, int64(550), trx.Amount)

	require.NotNil(t, trx.Metadata)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*trx.Metadata), &meta))
	assert.EqualValues(t, 999, meta["price_cents"])

	// confirmation credits base plus bonus
	_, err = ProcessTopup(db, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(550), balanceOf(t, db, user.ID))
}

func TestPurchaseInactivePackage(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "inactive-pkg@example.com", 0)
	pkg := models.CoinPackage{Name: "Retired", Coins: 100, PriceCents: 199, Active: boolPtr(false)}
	require.NoError(t, db.Create(&pkg).Error)

	// the explicit false must survive the insert, not fall back to the
	// column default
	var stored models.CoinPackage
	require.NoError(t, db.First(&stored, pkg.ID).Error)
	require.NotNil(t, stored.Active)
	assert.False(t, *stored.Active)

	_, err := PurchaseCoinPackage(db, pkg.ID, user.ID, "qris")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionStatsCountCompletedOnly(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "stats@example.com", 1000)

	topup, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "topup", Amount: 200})
	require.NoError(t, err)
	_, err = ProcessTopup(db, topup.ID)
	require.NoError(t, err)

	// pending topup must not count toward totals
	_, err = CreateTransaction(db, user.ID, TransactionSpec{Type: "topup", Amount: 999})
	require.NoError(t, err)

	wd, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "withdrawal", Amount: 150})
	require.NoError(t, err)
	_, err = ProcessWithdrawal(db, wd.ID)
	require.NoError(t, err)

	stats, err := GetTransactionStats(db, &user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), stats.TotalTopup)
	assert.Equal(t, int64(150), stats.TotalWithdrawal)
	assert.Equal(t, int64(1), stats.PendingCount)
}

func TestExpireStalePendingTopups(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "stale@example.com", 0)

	stale, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "topup", Amount: 100})
	require.NoError(t, err)
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	fresh, err := CreateTransaction(db, user.ID, TransactionSpec{Type: "topup", Amount: 100})
	require.NoError(t, err)

	n, err := ExpireStalePendingTopups(db, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	reloaded, err := GetTransaction(db, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", reloaded.Status)

	kept, err := GetTransaction(db, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", kept.Status)
}
