package users

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Platform             string `json:"platform" validate:"required,oneof=instagram tiktok youtube twitter facebook"`
	InteractionType      string `json:"interaction_type" validate:"required,oneof=like follow comment share view subscribe"`
	TargetURL            string `json:"target_url" validate:"required,httpurl"`
	TargetInteractions   int    `json:"target_interactions" validate:"required,positive"`
	CoinsPerInteraction  int64  `json:"coins_per_interaction" validate:"required,positive"`
	VerificationRequired *bool  `json:"verification_required,omitempty"`
}

// POST /v1/tasks
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB

	minCoins, err := services.GetSettingInt64(db, "min_coins_per_interaction")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	maxCoins, err := services.GetSettingInt64(db, "max_coins_per_interaction")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if req.CoinsPerInteraction < minCoins || req.CoinsPerInteraction > maxCoins {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "coins_per_interaction is out of the allowed range",
			Data:    map[string]interface{}{"min": minCoins, "max": maxCoins},
		})
		return
	}

	verification := true
	if req.VerificationRequired != nil {
		verification = *req.VerificationRequired
	}

	task, err := services.CreateTask(db, uid, services.TaskSpec{
		Platform:             req.Platform,
		InteractionType:      req.InteractionType,
		TargetURL:            req.TargetURL,
		TargetInteractions:   req.TargetInteractions,
		CoinsPerInteraction:  req.CoinsPerInteraction,
		VerificationRequired: verification,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	services.LogActivity(db, &uid, "task_create", "task", task.ID, task.TargetURL, clientIP(r))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

// GET /v1/tasks/mine
func MyTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := parsePagination(r)
	db := database.DB

	q := db.Model(&models.Task{}).Where("creator_id = ?", uid)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	var tasks []models.Task
	if err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&tasks).Error; err != nil {
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

// GET /v1/tasks/available lists active tasks from other users that the
// caller has not worked on yet and that still have open slots.
func AvailableTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := parsePagination(r)
	db := database.DB

	q := db.Model(&models.Task{}).
		Where("status = ?", "active").
		Where("creator_id <> ?", uid).
		Where("completed_interactions < target_interactions").
		Where("id NOT IN (?)", db.Model(&models.TaskWork{}).Select("task_id").Where("worker_id = ?", uid))
	if platform := r.URL.Query().Get("platform"); platform != "" {
		q = q.Where("platform = ?", platform)
	}
	if it := r.URL.Query().Get("interaction_type"); it != "" {
		q = q.Where("interaction_type = ?", it)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	var tasks []models.Task
	if err := q.Order("coins_per_interaction DESC, id DESC").Offset((page - 1) * limit).Limit(limit).Find(&tasks).Error; err != nil {
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

// GET /v1/tasks/{id}
func GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, mux.Vars(r), "id")
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

	data := map[string]interface{}{"task": task}
	if task.CreatorID == uid {
		// creators also see the submitted works
		var works []models.TaskWork
		db.Where("task_id = ?", id).Order("id ASC").Find(&works)
		data["works"] = works
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: data})
}

type UpdateTaskRequest struct {
	TargetURL            *string `json:"target_url,omitempty"`
	VerificationRequired *bool   `json:"verification_required,omitempty"`
}

// PATCH /v1/tasks/{id}
func UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req UpdateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task, err := services.UpdateTask(database.DB, id, uid, false, req.TargetURL, req.VerificationRequired)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: task})
}

// POST /v1/tasks/{id}/pause
func PauseTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskTransition(w, r, services.PauseTask, "Task paused", "task_pause")
}

// POST /v1/tasks/{id}/resume
func ResumeTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskTransition(w, r, services.ResumeTask, "Task resumed", "task_resume")
}

func taskTransition(w http.ResponseWriter, r *http.Request, fn func(db *gorm.DB, id uint, actorID uint, isAdmin bool) (*models.Task, error), okMsg, action string) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := fn(database.DB, id, uid, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, &uid, action, "task", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: okMsg, Data: task})
}

// POST /v1/tasks/{id}/cancel
func CancelTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, refund, err := services.CancelTask(database.DB, id, uid, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, &uid, "task_cancel", "task", id, "", clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task cancelled",
		Data:    map[string]interface{}{"task": task, "refunded_coins": refund},
	})
}
