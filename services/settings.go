package services

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"taskmarket/models"
)

type settingDefault struct {
	Value       string
	Description string
}

// settingDefaults documents every known key. Reading a missing key creates
// the row with its default as a side effect.
var settingDefaults = map[string]settingDefault{
	"commission_rate":           {"5", "Platform commission on task payouts, percent"},
	"min_coins_per_interaction": {"1", "Lower bound for a task's coins per interaction"},
	"max_coins_per_interaction": {"1000", "Upper bound for a task's coins per interaction"},
	"min_withdrawal_coins":      {"100", "Smallest withdrawal a user may request"},
	"welcome_bonus_coins":       {"50", "Coins credited to a freshly registered account"},
	"maintenance":               {"false", "Reject logins while true"},
	"registration_closed":       {"false", "Reject new registrations while true"},
}

// GetSetting returns the value for key, lazily creating the row with its
// documented default when absent. Unknown keys yield ErrNotFound.
func GetSetting(db *gorm.DB, key string) (string, error) {
	var row models.SystemSetting
	err := db.Where("`key` = ?", key).First(&row).Error
	if err == nil {
		return row.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	def, ok := settingDefaults[key]
	if !ok {
		return "", ErrNotFound
	}
	row = models.SystemSetting{Key: key, Value: def.Value, Description: def.Description}
	if err := db.Create(&row).Error; err != nil {
		// a concurrent reader may have created it first
		if isDuplicateKey(err) {
			if err2 := db.Where("`key` = ?", key).First(&row).Error; err2 == nil {
				return row.Value, nil
			}
		}
		return "", err
	}
	return row.Value, nil
}

// GetSettingInt64 parses the setting as an integer.
func GetSettingInt64(db *gorm.DB, key string) (int64, error) {
	v, err := GetSetting(db, key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// GetSettingBool parses the setting as a boolean.
func GetSettingBool(db *gorm.DB, key string) (bool, error) {
	v, err := GetSetting(db, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(v)
}

// SetSetting upserts a known key. Unknown keys are rejected so typos do not
// silently grow the table.
func SetSetting(db *gorm.DB, key, value string) error {
	def, ok := settingDefaults[key]
	if !ok {
		return ErrNotFound
	}
	var row models.SystemSetting
	err := db.Where("`key` = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.SystemSetting{Key: key, Value: value, Description: def.Description}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&row).Update("value", value).Error
}

// AllSettings materializes every known key (creating defaults as needed) and
// returns the full table for the admin settings screen.
func AllSettings(db *gorm.DB) ([]models.SystemSetting, error) {
	for key := range settingDefaults {
		if _, err := GetSetting(db, key); err != nil {
			return nil, err
		}
	}
	var rows []models.SystemSetting
	if err := db.Order("`key` ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
