package admins

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"
)

// GET /v1/admin/dashboard aggregates the numbers the admin screen shows.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var totalUsers, activeUsers int64
	db.Model(&models.User{}).Count(&totalUsers)
	db.Model(&models.User{}).Where("status = ?", "active").Count(&activeUsers)

	var totalTasks, activeTasks, completedTasks int64
	db.Model(&models.Task{}).Count(&totalTasks)
	db.Model(&models.Task{}).Where("status = ?", "active").Count(&activeTasks)
	db.Model(&models.Task{}).Where("status = ?", "completed").Count(&completedTasks)

	var pendingWorks, verifiedWorks int64
	db.Model(&models.TaskWork{}).Where("status = ?", "pending").Count(&pendingWorks)
	db.Model(&models.TaskWork{}).Where("status = ?", "verified").Count(&verifiedWorks)

	var coinsInCirculation int64
	db.Model(&models.User{}).Select("COALESCE(SUM(coin_balance),0)").Scan(&coinsInCirculation)

	stats, err := services.GetTransactionStats(db, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var recent []models.Transaction
	db.Order("id DESC").Limit(10).Find(&recent)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"users": map[string]interface{}{
				"total":  totalUsers,
				"active": activeUsers,
			},
			"tasks": map[string]interface{}{
				"total":     totalTasks,
				"active":    activeTasks,
				"completed": completedTasks,
			},
			"works": map[string]interface{}{
				"pending":  pendingWorks,
				"verified": verifiedWorks,
			},
			"coins_in_circulation": coinsInCirculation,
			"transactions":         stats,
			"recent_transactions":  recent,
			"http":                 middleware.MetricsSnapshot(),
		},
	})
}
