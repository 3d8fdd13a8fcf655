package admins

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"taskmarket/services"
	"taskmarket/utils"

	"github.com/sirupsen/logrus"
)

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func pathID(vars map[string]string, key string) (uint, bool) {
	n, err := strconv.ParseUint(vars[key], 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
	case errors.Is(err, services.ErrInsufficientBalance):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{Success: false, Message: "Insufficient coin balance"})
	case errors.Is(err, services.ErrInvalidAmount):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid amount"})
	case errors.Is(err, services.ErrAlreadyVerified):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Work is already verified"})
	case errors.Is(err, services.ErrAlreadyProcessed), errors.Is(err, services.ErrNotPending):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Already processed"})
	case errors.Is(err, services.ErrNotConfirmed):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{Success: false, Message: "Interaction could not be confirmed"})
	case errors.Is(err, services.ErrWrongType):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Wrong transaction type for this operation"})
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrTaskNotActive), errors.Is(err, services.ErrTargetReached):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Operation not allowed in the current state"})
	default:
		logrus.WithError(err).Error("admin service error")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}

func adminID(r *http.Request) *uint {
	if uid, ok := utils.GetUserID(r); ok && uid != 0 {
		return &uid
	}
	return nil
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
