package users

import (
	"net/http"
	"path/filepath"
	"strings"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type SubmitWorkRequest struct {
	TaskID   uint    `json:"task_id" validate:"required,positive"`
	ProofURL *string `json:"proof_url,omitempty"`
}

// POST /v1/taskworks
func SubmitWorkHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req SubmitWorkRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB
	work, err := services.CreateTaskWork(db, req.TaskID, uid, req.ProofURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	services.LogActivity(db, &uid, "work_submit", "task_work", work.ID, "", clientIP(r))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Work submitted", Data: work})
}

// GET /v1/taskworks/mine
func MyWorksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := parsePagination(r)
	db := database.DB

	q := db.Model(&models.TaskWork{}).Where("worker_id = ?", uid)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	var works []models.TaskWork
	if err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&works).Error; err != nil {
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

// GET /v1/taskworks/{id}
func GetWorkHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid work id"})
		return
	}
	db := database.DB
	work, err := services.GetTaskWork(db, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// the worker and the task creator may see a submission
	if work.WorkerID != uid {
		task, err := services.GetTask(db, work.TaskID)
		if err != nil || task.CreatorID != uid {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Access denied"})
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: work})
}

const maxProofBytes = 5 << 20

var proofContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// POST /v1/taskworks/proof uploads a proof screenshot and returns its URL.
// The client then passes the URL in the submit payload.
func UploadProofHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxProofBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "image file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxProofBytes {
		utils.WriteJSON(w, http.StatusRequestEntityTooLarge, utils.APIResponse{Success: false, Message: "Image exceeds the 5MB limit"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := proofContentTypes[strings.ToLower(contentType)]
	if !ok {
		// fall back to the filename extension
		ext = strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
			utils.WriteJSON(w, http.StatusUnsupportedMediaType, utils.APIResponse{Success: false, Message: "Only JPEG, PNG and WebP images are accepted"})
			return
		}
	}

	url, err := utils.UploadProofImage(r.Context(), file, header.Size, contentType, ext, uid)
	if err != nil {
		logrus.WithError(err).Error("proof upload failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store proof image"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Proof uploaded",
		Data:    map[string]interface{}{"proof_url": url},
	})
}
