package admins

import (
	"errors"
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/services"
	"taskmarket/utils"
)

// GET /v1/admin/settings
func GetSettings(w http.ResponseWriter, r *http.Request) {
	rows, err := services.AllSettings(database.DB)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: rows})
}

type UpdateSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// PUT /v1/admin/settings
func UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := services.SetSetting(database.DB, req.Key, req.Value); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown setting key"})
			return
		}
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "setting_update", "setting", 0, req.Key+"="+req.Value, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Setting updated"})
}
