package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/models"
)

func TestGetSettingCreatesDefaultLazily(t *testing.T) {
	db := newTestDB(t)

	var count int64
	db.Model(&models.SystemSetting{}).Count(&count)
	require.Zero(t, count)

	val, err := GetSetting(db, "min_withdrawal_coins")
	require.NoError(t, err)
	assert.Equal(t, "100", val)

	// the row now exists with its documented default
	var row models.SystemSetting
	require.NoError(t, db.Where("`key` = ?", "min_withdrawal_coins").First(&row).Error)
	assert.Equal(t, "100", row.Value)
	assert.NotEmpty(t, row.Description)
}

func TestGetSettingUnknownKey(t *testing.T) {
	db := newTestDB(t)

	_, err := GetSetting(db, "no_such_key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSettingPersists(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SetSetting(db, "min_withdrawal_coins", "250"))

	n, err := GetSettingInt64(db, "min_withdrawal_coins")
	require.NoError(t, err)
	assert.Equal(t, int64(250), n)

	// unknown keys are refused so typos cannot create silent config
	assert.ErrorIs(t, SetSetting(db, "min_withdrawl_coins", "1"), ErrNotFound)
}

func TestSettingTypedHelpers(t *testing.T) {
	db := newTestDB(t)

	b, err := GetSettingBool(db, "maintenance")
	require.NoError(t, err)
	assert.False(t, b)

	require.NoError(t, SetSetting(db, "maintenance", "true"))
	b, err = GetSettingBool(db, "maintenance")
	require.NoError(t, err)
	assert.True(t, b)

	n, err := GetSettingInt64(db, "max_coins_per_interaction")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)
}

func TestAllSettingsMaterializesEveryKey(t *testing.T) {
	db := newTestDB(t)

	rows, err := AllSettings(db)
	require.NoError(t, err)
	assert.Len(t, rows, len(settingDefaults))
}
