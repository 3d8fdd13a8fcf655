package admins

import (
	"net/http"
	"strconv"

	"taskmarket/database"
	"taskmarket/services"
	"taskmarket/utils"
)

// GET /v1/admin/activity lists the audit trail, newest first.
func GetActivityLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	var userID *uint
	if u := r.URL.Query().Get("user_id"); u != "" {
		if n, err := strconv.ParseUint(u, 10, 32); err == nil && n > 0 {
			v := uint(n)
			userID = &v
		}
	}

	logs, total, err := services.ListActivityLogs(database.DB, userID, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"logs":  logs,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
