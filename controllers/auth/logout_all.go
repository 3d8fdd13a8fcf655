package auth

import (
	"net/http"

	"taskmarket/database"
	"taskmarket/models"
	"taskmarket/utils"
)

// LogoutAllHandler revokes every refresh token of the authenticated user.
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	revokeAccessJTI(r)

	if err := database.DB.Model(&models.RefreshToken{}).Where("user_id = ?", uid).Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "All sessions revoked"})
}
