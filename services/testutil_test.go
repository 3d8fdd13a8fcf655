package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskmarket/models"
)

// newTestDB opens a fresh in-memory database, one per test, with the full
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskWork{},
		&models.Transaction{},
		&models.CoinPackage{},
		&models.SystemSetting{},
		&models.ActivityLog{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, balance int64) *models.User {
	t.Helper()
	user := &models.User{
		Name:        "Test " + email,
		Email:       email,
		Password:    "x",
		Role:        "user",
		Status:      "active",
		CoinBalance: balance,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTask(t *testing.T, db *gorm.DB, creatorID uint, target int, perCoin int64) *models.Task {
	t.Helper()
	task, err := CreateTask(db, creatorID, TaskSpec{
		Platform:             "instagram",
		InteractionType:      "like",
		TargetURL:            "https://instagram.com/p/abc123",
		TargetInteractions:   target,
		CoinsPerInteraction:  perCoin,
		VerificationRequired: true,
	})
	require.NoError(t, err)
	return task
}

func boolPtr(b bool) *bool {
	return &b
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.CoinBalance
}
