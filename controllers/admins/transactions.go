package admins

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
)

// GET /v1/admin/transactions
func GetTransactions(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	db := database.DB

	query := db.Model(&models.Transaction{})
	if t := r.URL.Query().Get("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		query = query.Where("status = ?", s)
	}
	if u := r.URL.Query().Get("user_id"); u != "" {
		query = query.Where("user_id = ?", u)
	}
	if ref := r.URL.Query().Get("reference_id"); ref != "" {
		query = query.Where("reference_id = ?", ref)
	}

	var total int64
	query.Count(&total)

	var trxs []models.Transaction
	if err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&trxs).Error; err != nil {
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

// GET /v1/admin/transactions/{id}
func GetTransactionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction id"})
		return
	}
	trx, err := services.GetTransaction(database.DB, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: trx})
}

// POST /v1/admin/transactions/{id}/process-topup credits the coins for a
// pending topup that was confirmed out of band.
func ProcessTopup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction id"})
		return
	}
	trx, err := services.ProcessTopup(database.DB, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "topup_process", "transaction", id, trx.ReferenceID, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Topup processed", Data: trx})
}

// POST /v1/admin/transactions/{id}/process-withdrawal debits the coins for
// a pending withdrawal. When the balance no longer covers it the row is
// marked failed and a 422 is returned.
func ProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction id"})
		return
	}
	trx, err := services.ProcessWithdrawal(database.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) && trx != nil {
			utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{
				Success: false,
				Message: "Balance no longer covers the withdrawal; transaction marked failed",
				Data:    trx,
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "withdrawal_process", "transaction", id, trx.ReferenceID, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Withdrawal processed", Data: trx})
}

type UpdateTransactionRequest struct {
	Status            string  `json:"status" validate:"required,oneof=completed failed cancelled"`
	ExternalReference *string `json:"external_reference,omitempty"`
}

// PATCH /v1/admin/transactions/{id} finalizes a pending transaction's
// status without touching balances. Topups that should credit coins go
// through process-topup instead.
func UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction id"})
		return
	}
	var req UpdateTransactionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	trx, err := services.UpdateTransaction(database.DB, id, req.Status, req.ExternalReference)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	services.LogActivity(database.DB, adminID(r), "transaction_update", "transaction", id, req.Status, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Transaction updated", Data: trx})
}

// GET /v1/admin/transactions/stats
func TransactionStats(w http.ResponseWriter, r *http.Request) {
	var userID *uint
	if u := r.URL.Query().Get("user_id"); u != "" {
		if n, err := strconv.ParseUint(u, 10, 32); err == nil && n > 0 {
			v := uint(n)
			userID = &v
		}
	}
	stats, err := services.GetTransactionStats(database.DB, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: stats})
}

// ExpirePendingTopups cancels pending topups older than the given number
// of hours (default 24). Wired to the cron endpoint.
func ExpirePendingTopups(w http.ResponseWriter, r *http.Request) {
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	if hours < 1 {
		hours = 24
	}
	n, err := services.ExpireStalePendingTopups(database.DB, time.Duration(hours)*time.Hour)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Stale pending topups expired",
		Data:    map[string]interface{}{"expired": n, "older_than_hours": hours},
	})
}
