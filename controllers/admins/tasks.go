package admins

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
)

// GET /v1/admin/tasks
func GetTasks(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	db := database.DB

	query := db.Model(&models.Task{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if platform := r.URL.Query().Get("platform"); platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if creator := r.URL.Query().Get("creator_id"); creator != "" {
		query = query.Where("creator_id = ?", creator)
	}

	var total int64
	query.Count(&total)

	var tasks []models.Task
	if err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"tasks": tasks,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GET /v1/admin/tasks/{id}
func GetTaskDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	db := database.DB
	task, err := services.GetTask(db, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var works []models.TaskWork
	db.Where("task_id = ?", id).Order("id ASC").Find(&works)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data:    map[string]interface{}{"task": task, "works": works},
	})
}

// POST /v1/admin/tasks/{id}/cancel cancels any task and refunds the
// unspent allocation to its creator.
func AdminCancelTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, refund, err := services.CancelTask(database.DB, id, 0, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "admin_task_cancel", "task", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task cancelled",
		Data:    map[string]interface{}{"task": task, "refunded_coins": refund},
	})
}

// POST /v1/admin/tasks/{id}/pause
func AdminPauseTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := services.PauseTask(database.DB, id, 0, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "admin_task_pause", "task", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task paused", Data: task})
}

// POST /v1/admin/tasks/{id}/resume
func AdminResumeTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := services.ResumeTask(database.DB, id, 0, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "admin_task_resume", "task", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task resumed", Data: task})
}
