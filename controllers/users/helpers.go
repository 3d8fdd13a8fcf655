package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"taskmarket/services"
	"taskmarket/utils"

	"github.com/sirupsen/logrus"
)

// parsePagination reads page/limit query params with the usual bounds.
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

func pathID(r *http.Request, vars map[string]string, key string) (uint, bool) {
	n, err := strconv.ParseUint(vars[key], 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// writeServiceError maps a service-layer error to the HTTP surface.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
	case errors.Is(err, services.ErrInsufficientBalance):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{Success: false, Message: "Insufficient coin balance"})
	case errors.Is(err, services.ErrBelowMinWithdrawal):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{Success: false, Message: "Amount is below the minimum withdrawal"})
	case errors.Is(err, services.ErrInvalidAmount):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid amount"})
	case errors.Is(err, services.ErrForbidden):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Access denied"})
	case errors.Is(err, services.ErrTaskNotActive):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task is not active"})
	case errors.Is(err, services.ErrTargetReached):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task target already reached"})
	case errors.Is(err, services.ErrDuplicateWork):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You already submitted work for this task"})
	case errors.Is(err, services.ErrSelfWork):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You cannot work on your own task"})
	case errors.Is(err, services.ErrNotPending), errors.Is(err, services.ErrAlreadyProcessed):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Transaction already processed"})
	case errors.Is(err, services.ErrWrongType):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Wrong transaction type for this operation"})
	case errors.Is(err, services.ErrInvalidState):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Operation not allowed in the current state"})
	default:
		logrus.WithError(err).Error("service error")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return 0, false
	}
	return uid, true
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

func ptrString(s string) *string {
	return &s
}
