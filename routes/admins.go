package routes

import (
	"net/http"
	"time"

	"taskmarket/controllers/admins"
	"taskmarket/middleware"

	"github.com/gorilla/mux"
)

// SetAdminRoutes registers the admin surface and the cron endpoints.
func SetAdminRoutes(api *mux.Router) {
	adminLimiter := middleware.NewIPRateLimiter(600, time.Minute)
	cronLimiter := middleware.NewIPRateLimiter(1000, time.Hour)

	protect := func(h http.HandlerFunc) http.Handler {
		return adminLimiter.Middleware(middleware.AdminAuthMiddleware(http.HandlerFunc(h)))
	}

	admin := api.PathPrefix("/admin").Subrouter()

	admin.Handle("/dashboard", protect(admins.Dashboard)).Methods(http.MethodGet)

	// Users
	admin.Handle("/users", protect(admins.GetUsers)).Methods(http.MethodGet)
	admin.Handle("/users/{id:[0-9]+}", protect(admins.GetUserDetail)).Methods(http.MethodGet)
	admin.Handle("/users/{id:[0-9]+}/status", protect(admins.UpdateUserStatus)).Methods(http.MethodPatch)
	admin.Handle("/users/{id:[0-9]+}/balance", protect(admins.AdjustUserBalance)).Methods(http.MethodPost)

	// Tasks
	admin.Handle("/tasks", protect(admins.GetTasks)).Methods(http.MethodGet)
	admin.Handle("/tasks/{id:[0-9]+}", protect(admins.GetTaskDetail)).Methods(http.MethodGet)
	admin.Handle("/tasks/{id:[0-9]+}/pause", protect(admins.AdminPauseTask)).Methods(http.MethodPost)
	admin.Handle("/tasks/{id:[0-9]+}/resume", protect(admins.AdminResumeTask)).Methods(http.MethodPost)
	admin.Handle("/tasks/{id:[0-9]+}/cancel", protect(admins.AdminCancelTask)).Methods(http.MethodPost)

	// Work verification
	admin.Handle("/taskworks", protect(admins.GetTaskWorks)).Methods(http.MethodGet)
	admin.Handle("/taskworks/{id:[0-9]+}/verify", protect(admins.VerifyTaskWork)).Methods(http.MethodPost)
	admin.Handle("/taskworks/{id:[0-9]+}/reject", protect(admins.RejectTaskWork)).Methods(http.MethodPost)
	admin.Handle("/taskworks/{id:[0-9]+}/auto-verify", protect(admins.AutoVerifyTaskWork)).Methods(http.MethodPost)

	// Transactions
	admin.Handle("/transactions", protect(admins.GetTransactions)).Methods(http.MethodGet)
	admin.Handle("/transactions/stats", protect(admins.TransactionStats)).Methods(http.MethodGet)
	admin.Handle("/transactions/{id:[0-9]+}", protect(admins.GetTransactionDetail)).Methods(http.MethodGet)
	admin.Handle("/transactions/{id:[0-9]+}", protect(admins.UpdateTransaction)).Methods(http.MethodPatch)
	admin.Handle("/transactions/{id:[0-9]+}/process-topup", protect(admins.ProcessTopup)).Methods(http.MethodPost)
	admin.Handle("/transactions/{id:[0-9]+}/process-withdrawal", protect(admins.ProcessWithdrawal)).Methods(http.MethodPost)

	// Settings, packages and the audit trail
	admin.Handle("/settings", protect(admins.GetSettings)).Methods(http.MethodGet)
	admin.Handle("/settings", protect(admins.UpdateSetting)).Methods(http.MethodPut)
	admin.Handle("/packages", protect(admins.GetPackages)).Methods(http.MethodGet)
	admin.Handle("/packages", protect(admins.CreatePackage)).Methods(http.MethodPost)
	admin.Handle("/packages/{id:[0-9]+}", protect(admins.UpdatePackage)).Methods(http.MethodPut)
	admin.Handle("/packages/{id:[0-9]+}", protect(admins.DeletePackage)).Methods(http.MethodDelete)
	admin.Handle("/activity", protect(admins.GetActivityLogs)).Methods(http.MethodGet)

	// Cron: expire pending topups the gateway never confirmed
	api.Handle("/cron/expire-pending-topups", cronLimiter.Middleware(requireCronKey(http.HandlerFunc(admins.ExpirePendingTopups)))).Methods(http.MethodPost)
}
