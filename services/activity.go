package services

import (
	"gorm.io/gorm"

	"taskmarket/models"
)

// LogActivity appends an audit record. Callers invoke it after a successful
// mutation; the ledger itself never writes here.
func LogActivity(db *gorm.DB, userID *uint, action, entity string, entityID uint, detail, ip string) error {
	return db.Create(&models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Detail:    detail,
		IPAddress: ip,
	}).Error
}

// ListActivityLogs pages through the audit trail, newest first.
func ListActivityLogs(db *gorm.DB, userID *uint, page, limit int) ([]models.ActivityLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	q := db.Model(&models.ActivityLog{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ActivityLog
	err := q.Order("id DESC").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error
	return rows, total, err
}
