package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"taskmarket/controllers/users"
	"taskmarket/middleware"
	"taskmarket/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "taskmarket-api",
	})
}

// requireCronKey guards the cron endpoints with the X-CRON-KEY header.
func requireCronKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := os.Getenv("CRON_KEY")
		if key == "" || r.Header.Get("X-CRON-KEY") != key {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check for Docker / load balancer probes (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-CRON-KEY", "X-Callback-Signature", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// Payment gateway webhook: per-IP limit with a whitelist bypass
	webhookLimiter := middleware.NewWebhookLimiter(500, time.Hour, strings.Split(os.Getenv("WEBHOOK_IP_WHITELIST"), ","))
	api.Handle("/payments/callback", webhookLimiter.Middleware(http.HandlerFunc(users.PaymentCallbackHandler))).Methods(http.MethodPost)

	UsersRoutes(api)
	SetAdminRoutes(api)

	return r
}
