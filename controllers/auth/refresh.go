package auth

import (
	"encoding/json"
	"net/http"

	"taskmarket/database"
	"taskmarket/models"
	"taskmarket/utils"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshHandler exchanges a valid refresh token for a new access token and a
// rotated refresh token.
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	rt, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	// the role claim has to come from the current row, not the old token
	var user models.User
	if err := database.DB.First(&user, rt.UserID).Error; err != nil || user.Status != "active" {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	// rotate: the old token is revoked before the replacement is issued, so a
	// replayed token can never mint a second chain
	rt.Revoked = true
	if err := database.DB.Save(rt).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	newJTI, _, err := utils.GenerateRefreshToken(rt.UserID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Token refreshed",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": newJTI,
		},
	})
}
