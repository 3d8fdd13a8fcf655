package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"taskmarket/database"
	"taskmarket/middleware"
	"taskmarket/models"
	"taskmarket/services"
	"taskmarket/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name                 string  `json:"name" validate:"required"`
	Email                string  `json:"email" validate:"required,email"`
	Password             string  `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"required,eqfield=Password"`
	InstagramHandle      *string `json:"instagram_handle,omitempty"`
	TiktokHandle         *string `json:"tiktok_handle,omitempty"`
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB

	if closed, err := services.GetSettingBool(db, "registration_closed"); err == nil && closed {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Registration is currently closed. Please try again later.",
			Data:    map[string]interface{}{"registration_closed": true},
		})
		return
	}

	if maint, err := services.GetSettingBool(db, "maintenance"); err == nil && maint {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "The platform is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true},
		})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Ensure unique email
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("register: email lookup failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	bonus, err := services.GetSettingInt64(db, "welcome_bonus_coins")
	if err != nil {
		logrus.WithError(err).Error("register: welcome bonus setting")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	newUser := models.User{
		Name:            req.Name,
		Email:           req.Email,
		Password:        string(hashed),
		Role:            "user",
		Status:          "active",
		CoinBalance:     0,
		InstagramHandle: req.InstagramHandle,
		TiktokHandle:    req.TiktokHandle,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		if bonus <= 0 {
			return nil
		}
		if err := services.Credit(tx, newUser.ID, bonus); err != nil {
			return err
		}
		desc := "Welcome bonus"
		return tx.Create(&models.Transaction{
			UserID:      newUser.ID,
			Type:        "bonus",
			Amount:      bonus,
			Status:      "completed",
			ReferenceID: utils.GenerateReferenceID(newUser.ID),
			Description: desc,
			ProcessedAt: timePtr(time.Now()),
		}).Error
	})
	if err != nil {
		logrus.WithError(err).Error("register: create user failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed, please try again"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(newUser.ID, "user")
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to issue token"})
		return
	}
	refreshJTI, _, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	services.LogActivity(db, &newUser.ID, "register", "user", newUser.ID, "", clientIP(r))

	// re-read so the response reflects the credited bonus
	db.First(&newUser, newUser.ID)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful, welcome!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshJTI,
			"user":          userPayload(&newUser),
		},
	})
}

func userPayload(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":               u.ID,
		"name":             u.Name,
		"email":            u.Email,
		"role":             u.Role,
		"status":           u.Status,
		"coin_balance":     u.CoinBalance,
		"instagram_handle": u.InstagramHandle,
		"tiktok_handle":    u.TiktokHandle,
		"created_at":       u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
