package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/upload"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, uploads *upload.Service) *http.ServeMux {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	uploadsHandler := &UploadsHandler{Uploads: uploads}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	optionalAuth := OptionalAuth(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: health, registration, login.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated auth routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items. Reads are public; ?all=true only takes effect for admins.
	mux.Handle("GET /items", optionalAuth(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /items/{id}", optionalAuth(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("POST /items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("DELETE /items", authMW(http.HandlerFunc(itemsHandler.DeleteByBody)))

	// Image uploads: presigning needs auth, the PUT itself is authorized
	// by its signature, and serving is public.
	mux.Handle("POST /presigned-urls", authMW(http.HandlerFunc(uploadsHandler.Presign)))
	mux.HandleFunc("PUT /uploads/{key}", uploadsHandler.Put)
	mux.HandleFunc("GET /uploads/{key}", uploadsHandler.Get)

	// Admin dashboard.
	mux.Handle("GET /api/stats", authMW(requireAdmin(http.HandlerFunc(adminHandler.Stats))))
	mux.Handle("GET /api/export", authMW(requireAdmin(http.HandlerFunc(adminHandler.Export))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(adminHandler.Purge))))

	return mux
}
