package users

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
)

// GET /v1/transactions
func TransactionListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := parsePagination(r)
	db := database.DB

	q := db.Model(&models.Transaction{}).Where("user_id = ?", uid)
	if t := r.URL.Query().Get("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	var trxs []models.Transaction
	if err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&trxs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"transactions": trxs,
			"page":         page,
			"limit":        limit,
			"total":        total,
		},
	})
}

// GET /v1/transactions/{id}
func GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction id"})
		return
	}
	trx, err := services.GetTransaction(database.DB, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if trx.UserID != uid {
		// hide other users' rows behind a 404
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: trx})
}

// GET /v1/transactions/stats
func TransactionStatsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := services.GetTransactionStats(database.DB, &uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: stats})
}
