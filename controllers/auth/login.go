package auth

import (
	"errors"
	"net/http"
	"strings"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdmin"`
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB

	if maint, err := services.GetSettingBool(db, "maintenance"); err == nil && maint {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "The platform is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true},
		})
		return
	}

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	switch user.Status {
	case "active":
	case "suspended":
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is suspended, please contact support"})
		return
	default:
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is not active, please contact support"})
		return
	}

	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: "Too many failed attempts. Try again later.",
			Data:    map[string]interface{}{"retry_after_seconds": int(retry.Seconds())},
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	middleware.ResetFailedLogin(user.ID)

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Login failed"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	services.LogActivity(db, &user.ID, "login", "user", user.ID, "", clientIP(r))

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshJTI,
			"user":          userPayload(&user),
		},
	})
}
