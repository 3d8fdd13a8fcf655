package admins

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/gorilla/mux"
)

// GET /v1/admin/packages lists all packages, inactive included.
func GetPackages(w http.ResponseWriter, r *http.Request) {
	var pkgs []models.CoinPackage
	if err := database.DB.Order("price_cents ASC").Find(&pkgs).Error; err != nil {
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
			"price_cents": p.PriceCents,
			"active":      p.Active != nil && *p.Active,
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: resp})
}

type PackageRequest struct {
	Name       string  `json:"name" validate:"required"`
	Coins      int64   `json:"coins" validate:"required,positive"`
	BonusCoins int64   `json:"bonus_coins"`
	Price      float64 `json:"price" validate:"required"`
	Active     *bool   `json:"active,omitempty"`
}

// POST /v1/admin/packages
func CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req PackageRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Price <= 0 || req.BonusCoins < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid price or bonus"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	pkg := models.CoinPackage{
		Name:       req.Name,
		Coins:      req.Coins,
		BonusCoins: req.BonusCoins,
		PriceCents: utils.PriceToCents(req.Price),
		Active:     &active,
	}
	if err := database.DB.Create(&pkg).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create package"})
		return
	}
	services.LogActivity(database.DB, adminID(r), "package_create", "coin_package", pkg.ID, pkg.Name, clientIP(r))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Package created", Data: pkg})
}

// PUT /v1/admin/packages/{id}
func UpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid package id"})
		return
	}
	var req PackageRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Price <= 0 || req.BonusCoins < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid price or bonus"})
		return
	}

	db := database.DB
	var pkg models.CoinPackage
	if err := db.First(&pkg, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Package not found"})
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"coins":       req.Coins,
		"bonus_coins": req.BonusCoins,
		"price_cents": utils.PriceToCents(req.Price),
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := db.Model(&pkg).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update package"})
		return
	}
	services.LogActivity(db, adminID(r), "package_update", "coin_package", pkg.ID, pkg.Name, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Package updated", Data: pkg})
}

// DELETE /v1/admin/packages/{id} deactivates a package. Rows are kept so
// old purchase metadata keeps resolving.
func DeletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid package id"})
		return
	}
	db := database.DB
	var pkg models.CoinPackage
	if err := db.First(&pkg, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Package not found"})
		return
	}
	if err := db.Model(&pkg).Update("active", false).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to deactivate package"})
		return
	}
	services.LogActivity(db, adminID(r), "package_deactivate", "coin_package", pkg.ID, pkg.Name, clientIP(r))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Package deactivated"})
}
