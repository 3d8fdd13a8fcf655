package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditAndDebit(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ledger@example.com", 0)

	require.NoError(t, Credit(db, user.ID, 100))
	assert.Equal(t, int64(100), balanceOf(t, db, user.ID))

	require.NoError(t, Debit(db, user.ID, 30))
	assert.Equal(t, int64(70), balanceOf(t, db, user.ID))
}

func TestDebitInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "poor@example.com", 50)

	err := Debit(db, user.ID, 51)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(50), balanceOf(t, db, user.ID))
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "zero@example.com", 10)

	assert.ErrorIs(t, Credit(db, user.ID, 0), ErrInvalidAmount)
	assert.ErrorIs(t, Credit(db, user.ID, -5), ErrInvalidAmount)
	assert.ErrorIs(t, Debit(db, user.ID, 0), ErrInvalidAmount)
	assert.ErrorIs(t, Debit(db, user.ID, -5), ErrInvalidAmount)
}

func TestLedgerUnknownUser(t *testing.T) {
	db := newTestDB(t)

	assert.ErrorIs(t, Credit(db, 9999, 10), ErrNotFound)
	assert.ErrorIs(t, Debit(db, 9999, 10), ErrNotFound)
}

func TestAdminSetBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "admin-set@example.com", 10)

	require.NoError(t, AdminSetBalance(db, user.ID, 500))
	assert.Equal(t, int64(500), balanceOf(t, db, user.ID))

	assert.ErrorIs(t, AdminSetBalance(db, user.ID, -1), ErrInvalidAmount)
	assert.ErrorIs(t, AdminSetBalance(db, 9999, 10), ErrNotFound)
}
