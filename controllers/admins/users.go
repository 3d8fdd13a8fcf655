package admins

import (
	"net/http"
	"strings"
	"time"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/admin/users
func GetUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	status := r.URL.Query().Get("status")
	role := r.URL.Query().Get("role")
	search := r.URL.Query().Get("search")

	db := database.DB
	query := db.Model(&models.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"users": users,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GET /v1/admin/users/{id}
func GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	db := database.DB

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	stats, err := services.GetTransactionStats(db, &id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var taskCount, workCount int64
	db.Model(&models.Task{}).Where("creator_id = ?", id).Count(&taskCount)
	db.Model(&models.TaskWork{}).Where("worker_id = ?", id).Count(&workCount)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"user":       user,
			"stats":      stats,
			"task_count": taskCount,
			"work_count": workCount,
		},
	})
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended blocked"`
}

// PATCH /v1/admin/users/{id}/status
func UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	var req UpdateUserStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if err := db.Model(&user).Updates(map[string]interface{}{"status": req.Status, "updated_at": time.Now()}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update status"})
		return
	}

	services.LogActivity(db, adminID(r), "user_status_update", "user", id, req.Status, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User status updated"})
}

type AdjustBalanceRequest struct {
	Amount      int64  `json:"amount" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// POST /v1/admin/users/{id}/balance credits or debits a user as a manual
// bonus adjustment. Negative amounts debit.
func AdjustUserBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	var req AdjustBalanceRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Amount == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount must not be zero"})
		return
	}

	db := database.DB
	err := db.Transaction(func(tx *gorm.DB) error {
		if req.Amount > 0 {
			if err := services.Credit(tx, id, req.Amount); err != nil {
				return err
			}
		} else {
			if err := services.Debit(tx, id, -req.Amount); err != nil {
				return err
			}
		}
		now := time.Now()
		amount := req.Amount
		if amount < 0 {
			amount = -amount
		}
		return tx.Create(&models.Transaction{
			UserID:      id,
			Type:        "bonus",
			Amount:      amount,
			Status:      "completed",
			ReferenceID: utils.GenerateReferenceID(id),
			Description: req.Description,
			ProcessedAt: &now,
		}).Error
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	services.LogActivity(db, adminID(r), "balance_adjust", "user", id, req.Description, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Balance adjusted"})
}
