package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"taskmarket/database"
	"taskmarket/models"
	"taskmarket/utils"

	"gorm.io/gorm"
)

// AdminAuthMiddleware verifies that the request carries a valid token whose
// role claim is admin and whose user row still exists with role=admin.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: No token provided",
			})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		// Centralized validation checks aud/iss/exp/nbf and revocation
		_, claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: Invalid token",
			})
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Admin access required",
			})
			return
		}

		adminID := claimUserID(claims)
		if adminID == 0 {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: Invalid token payload",
			})
			return
		}

		// The role claim is only as fresh as the token; re-check the row so
		// a demoted or blocked admin loses access immediately.
		var admin models.User
		err = database.DB.Where("id = ? AND role = ? AND status = ?", adminID, "admin", "active").First(&admin).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden: Admin access required",
				})
				return
			}
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Server error",
			})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, adminID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, "admin")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
