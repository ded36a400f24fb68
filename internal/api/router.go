package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *workflow.Service) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db, Service: svc}
	messagesHandler := &MessagesHandler{DB: db}
	feedbackHandler := &FeedbackHandler{DB: db}
	dashboardHandler := &DashboardHandler{DB: db}
	adminHandler := &AdminHandler{DB: db, Service: svc}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: register and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/user", authMW(http.HandlerFunc(authHandler.CurrentUser)))
	mux.Handle("GET /api/dashboard", authMW(http.HandlerFunc(dashboardHandler.Get)))

	// Items.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("POST /api/items/{id}/claim", authMW(http.HandlerFunc(itemsHandler.Claim)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Messages and feedback.
	mux.Handle("GET /api/messages", authMW(http.HandlerFunc(messagesHandler.List)))
	mux.Handle("POST /api/messages", authMW(http.HandlerFunc(messagesHandler.Create)))
	mux.Handle("POST /api/feedback", authMW(http.HandlerFunc(feedbackHandler.Create)))

	// Admin.
	mux.Handle("GET /api/admin/dashboard", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Dashboard))))
	mux.Handle("DELETE /api/admin/items/{id}", authMW(RequireAdmin(http.HandlerFunc(adminHandler.DeleteItem))))
	mux.Handle("DELETE /api/admin/claims/{id}", authMW(RequireAdmin(http.HandlerFunc(adminHandler.DeleteClaim))))
	mux.Handle("DELETE /api/admin/users/{id}", authMW(RequireAdmin(http.HandlerFunc(adminHandler.DeleteUser))))
	mux.Handle("POST /api/admin/reconcile", authMW(RequireAdmin(http.HandlerFunc(adminHandler.Reconcile))))

	return mux
}
