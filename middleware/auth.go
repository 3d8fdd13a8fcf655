package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"taskmarket/utils"
)

func writeJSON(w http.ResponseWriter, status int, resp map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// AuthMiddleware validates the bearer token and injects user id and role
// into the request context. Admin tokens are rejected on user endpoints.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		// Use shared validation which checks signature and registered claims
		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
					"success": false,
					"message": "Session expired, please log in again",
				})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		userID := claimUserID(claims)
		var role string
		if rStr, ok := claims["role"].(string); ok {
			role = rStr
		}

		// admin tokens belong on the /admin surface
		if role == "admin" {
			writeJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": "Access denied",
			})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, userID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimUserID(claims map[string]interface{}) uint {
	rawID, ok := claims["id"]
	if !ok {
		return 0
	}
	switch v := rawID.(type) {
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case string:
		var n uint
		_, _ = fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}
