package routes

import (
	"net/http"
	"time"

	"taskmarket/controllers/auth"
	"taskmarket/controllers/users"
	"taskmarket/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the auth and user-facing routes on the given subrouter.
func UsersRoutes(api *mux.Router) {
	// login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// session traffic: 120 reads, 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	protect := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(h)))
	}

	// Auth
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", protect(auth.LogoutHandler)).Methods(http.MethodPost)
	api.Handle("/logout-all", protect(auth.LogoutAllHandler)).Methods(http.MethodPost)

	// Profile
	api.Handle("/users/me", protect(users.MeHandler)).Methods(http.MethodGet)
	api.Handle("/users/me", protect(users.UpdateProfileHandler)).Methods(http.MethodPut)
	api.Handle("/users/change-password", protect(users.ChangePasswordHandler)).Methods(http.MethodPost)

	// Tasks
	api.Handle("/tasks", protect(users.CreateTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/mine", protect(users.MyTasksHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/available", protect(users.AvailableTasksHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", protect(users.GetTaskHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", protect(users.UpdateTaskHandler)).Methods(http.MethodPatch)
	api.Handle("/tasks/{id:[0-9]+}/pause", protect(users.PauseTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/resume", protect(users.ResumeTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/cancel", protect(users.CancelTaskHandler)).Methods(http.MethodPost)

	// Task works
	api.Handle("/taskworks", protect(users.SubmitWorkHandler)).Methods(http.MethodPost)
	api.Handle("/taskworks/mine", protect(users.MyWorksHandler)).Methods(http.MethodGet)
	api.Handle("/taskworks/proof", protect(users.UploadProofHandler)).Methods(http.MethodPost)
	api.Handle("/taskworks/{id:[0-9]+}", protect(users.GetWorkHandler)).Methods(http.MethodGet)

	// Transactions
	api.Handle("/transactions", protect(users.TransactionListHandler)).Methods(http.MethodGet)
	api.Handle("/transactions/stats", protect(users.TransactionStatsHandler)).Methods(http.MethodGet)
	api.Handle("/transactions/{id:[0-9]+}", protect(users.GetTransactionHandler)).Methods(http.MethodGet)

	// Withdrawals and coin packages
	api.Handle("/withdrawals", protect(users.CreateWithdrawalHandler)).Methods(http.MethodPost)
	api.Handle("/packages", protect(users.PackageListHandler)).Methods(http.MethodGet)
	api.Handle("/packages/purchase", protect(users.PurchasePackageHandler)).Methods(http.MethodPost)
}
