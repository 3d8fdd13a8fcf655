package users

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/services"
	"taskmarket/utils"
)

type WithdrawalRequest struct {
	Amount        int64  `json:"amount" validate:"required,positive"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// POST /v1/withdrawals creates a pending withdrawal. Coins leave the
// balance only when an admin processes it.
func CreateWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req WithdrawalRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB
	trx, err := services.CreateTransaction(db, uid, services.TransactionSpec{
		Type:          "withdrawal",
		Amount:        req.Amount,
		PaymentMethod: ptrString(req.PaymentMethod),
		Description:   "Coin withdrawal request",
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// the gateway fee is informational: the ledger always moves the full
	// amount, the payout side deducts the commission
	var fee int64
	if rate, err := services.GetSettingInt64(db, "commission_rate"); err == nil && rate > 0 {
		fee = req.Amount * rate / 100
	}

	services.LogActivity(db, &uid, "withdrawal_request", "transaction", trx.ID, trx.ReferenceID, clientIP(r))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal requested",
		Data: map[string]interface{}{
			"transaction":  trx,
			"fee_coins":    fee,
			"payout_coins": req.Amount - fee,
		},
	})
}
