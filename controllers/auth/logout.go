package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"taskmarket/database"
	"taskmarket/models"
	"taskmarket/utils"

	"github.com/golang-jwt/jwt/v5"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutHandler revokes a specific refresh token and, when an Authorization
// header is present, blacklists the access token jti as well.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "refresh_token is required"})
		return
	}

	revokeAccessJTI(r)

	if err := database.DB.Model(&models.RefreshToken{}).Where("id = ?", req.RefreshToken).Update("revoked", true).Error; err != nil {
		// Missing rows still answer OK to avoid token enumeration
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}

// revokeAccessJTI best-effort blacklists the jti of the bearer token on r.
func revokeAccessJTI(r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	tkn, err := utils.ValidateToken(tokenStr)
	if err != nil || tkn == nil {
		return
	}
	claims, ok := tkn.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return
	}
	var ttl time.Duration
	if expRaw, ok := claims["exp"].(float64); ok {
		ttl = time.Until(time.Unix(int64(expRaw), 0))
	}
	if ttl < 0 {
		ttl = 0
	}
	_ = utils.RevokeJTI(jti, ttl)
}
