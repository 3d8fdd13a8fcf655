package admins

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
)

// GET /v1/admin/taskworks lists submissions, pending first by default.
func GetTaskWorks(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	db := database.DB

	query := db.Model(&models.TaskWork{})
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}
	if status != "all" {
		query = query.Where("status = ?", status)
	}
	if taskID := r.URL.Query().Get("task_id"); taskID != "" {
		query = query.Where("task_id = ?", taskID)
	}

	var total int64
	query.Count(&total)

	var works []models.TaskWork
	if err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&works).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"works": works,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

type VerifyWorkRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// POST /v1/admin/taskworks/{id}/verify manually verifies a submission:
// the worker is paid and the task counter advances.
func VerifyTaskWork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid work id"})
		return
	}
	var req VerifyWorkRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	work, err := services.VerifyTaskWork(database.DB, id, "manual", req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "work_verify", "task_work", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Work verified", Data: work})
}

type RejectWorkRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// POST /v1/admin/taskworks/{id}/reject
func RejectTaskWork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid work id"})
		return
	}
	var req RejectWorkRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	work, err := services.RejectTaskWork(database.DB, id, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "work_reject", "task_work", id, req.Reason, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Work rejected", Data: work})
}

// POST /v1/admin/taskworks/{id}/auto-verify asks the platform checker to
// confirm the interaction and verifies the work on success.
func AutoVerifyTaskWork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid work id"})
		return
	}

	work, err := services.AutoVerifyTaskWork(r.Context(), database.DB, services.DefaultInteractionChecker(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "work_auto_verify", "task_work", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Work verified automatically", Data: work})
}
