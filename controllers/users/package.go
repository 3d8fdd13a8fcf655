package users

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"
)

// GET /v1/packages lists purchasable coin packages.
func PackageListHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var pkgs []models.CoinPackage
	if err := database.DB.Where("active = ?", true).Order("price_cents ASC").Find(&pkgs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	resp := make([]map[string]interface{}, 0, len(pkgs))
	for _, p := range pkgs {
		resp = append(resp, map[string]interface{}{
			"id":          p.ID,
			"name":        p.Name,
			"coins":       p.Coins,
			"bonus_coins": p.BonusCoins,
			"price":       utils.CentsToPrice(p.PriceCents),
			"total_coins": p.Coins + p.BonusCoins,
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: resp})
}

type PurchaseRequest struct {
	PackageID     uint   `json:"package_id" validate:"required,positive"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// POST /v1/packages/purchase creates a pending topup for a coin package.
// The payment gateway confirms it through the callback endpoint.
func PurchasePackageHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req PurchaseRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB
	trx, err := services.PurchaseCoinPackage(db, req.PackageID, uid, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	services.LogActivity(db, &uid, "package_purchase", "transaction", trx.ID, trx.ReferenceID, clientIP(r))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Purchase created, awaiting payment", Data: trx})
}
