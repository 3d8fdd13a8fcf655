package users

import (
	"net/http"
	"time"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"
)

// GET /v1/users/me
func MeHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	db := database.DB

	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	var verifiedWorks int64
	db.Model(&models.TaskWork{}).Where("worker_id = ? AND status = ?", uid, "verified").Count(&verifiedWorks)
	var activeTasks int64
	db.Model(&models.Task{}).Where("creator_id = ? AND status = ?", uid, "active").Count(&activeTasks)

	stats, err := services.GetTransactionStats(db, &uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"user": map[string]interface{}{
				"id":               user.ID,
				"name":             user.Name,
				"email":            user.Email,
				"role":             user.Role,
				"status":           user.Status,
				"coin_balance":     user.CoinBalance,
				"instagram_handle": user.InstagramHandle,
				"tiktok_handle":    user.TiktokHandle,
				"telegram_id":      user.TelegramID,
				"created_at":       user.CreatedAt.UTC().Format(time.RFC3339),
			},
			"stats": map[string]interface{}{
				"verified_works":     verifiedWorks,
				"active_tasks":       activeTasks,
				"total_topup":        stats.TotalTopup,
				"total_withdrawal":   stats.TotalWithdrawal,
				"total_task_payment": stats.TotalTaskPayment,
				"total_task_earning": stats.TotalTaskEarning,
				"total_bonus":        stats.TotalBonus,
				"pending_count":      stats.PendingCount,
			},
		},
	})
}

type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	InstagramHandle *string `json:"instagram_handle,omitempty"`
	TiktokHandle    *string `json:"tiktok_handle,omitempty"`
	TelegramID      *string `json:"telegram_id,omitempty"`
}

// PUT /v1/users/me
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.InstagramHandle != nil {
		updates["instagram_handle"] = req.InstagramHandle
	}
	if req.TiktokHandle != nil {
		updates["tiktok_handle"] = req.TiktokHandle
	}
	if req.TelegramID != nil {
		updates["telegram_id"] = req.TelegramID
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update profile"})
		return
	}

	services.LogActivity(db, &uid, "profile_update", "user", uid, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile updated"})
}
