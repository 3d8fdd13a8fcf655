package users

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"taskmarket/database"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/sirupsen/logrus"
)

type paymentCallback struct {
	ReferenceID       string `json:"reference_id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// PaymentCallbackHandler handles gateway confirmations for pending topups.
// The body is authenticated with an HMAC signature header; callbacks for
// already-processed transactions answer 200 so the gateway stops retrying.
func PaymentCallbackHandler(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("PAYMENT_CALLBACK_SECRET")
	if secret == "" {
		logrus.Error("payment callback: PAYMENT_CALLBACK_SECRET is not set")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid body"})
		return
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	got := r.Header.Get("X-Callback-Signature")
	if got == "" || !hmac.Equal([]byte(expected), []byte(got)) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid signature"})
		return
	}

	var cb paymentCallback
	if err := json.Unmarshal(body, &cb); err != nil || cb.ReferenceID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payload"})
		return
	}

	db := database.DB
	trx, err := services.GetTransactionByReference(db, cb.ReferenceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log := logrus.WithFields(logrus.Fields{
		"reference_id": cb.ReferenceID,
		"status":       cb.Status,
	})

	switch cb.Status {
	case "paid":
		processed, err := services.ProcessTopup(db, trx.ID)
		if err != nil {
			if errors.Is(err, services.ErrNotPending) || errors.Is(err, services.ErrAlreadyProcessed) {
				// retried callback, nothing left to do
				utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Already processed"})
				return
			}
			writeServiceError(w, err)
			return
		}
		if cb.ExternalReference != "" {
			db.Model(processed).Update("external_reference", cb.ExternalReference)
		}
		log.Info("topup confirmed")
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Topup processed"})
	case "failed", "expired":
		if _, err := services.UpdateTransaction(db, trx.ID, "failed", strPtrOrNil(cb.ExternalReference)); err != nil {
			if errors.Is(err, services.ErrNotPending) {
				utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Already processed"})
				return
			}
			writeServiceError(w, err)
			return
		}
		log.Warn("topup failed at gateway")
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Marked as failed"})
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown status"})
	}
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
