package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the public endpoints and the JWT-guarded admin surface.
// The dashboard is a browser app on its own origin, hence the open CORS.
func NewRouter(h *Handlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/api/login", h.Login)
	r.Get("/api/track/{trackingNumber}", h.TrackParcel)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Get("/api/parcels", h.ListParcels)
		r.Post("/api/parcels", h.CreateParcel)
		r.Put("/api/parcels/{id}", h.UpdateParcel)
		r.Delete("/api/parcels/{id}", h.DeleteParcel)
		r.Post("/api/parcels/{id}/status", h.SetStatus)
		r.Post("/api/parcels/bulk-status", h.BulkSetStatus)
		r.Post("/api/parcels/import", h.ImportParcels)
		r.Get("/api/parcels/export", h.ExportParcels)

		r.Get("/api/analytics", h.Analytics)
		r.Get("/api/stats", h.Stats)

		r.Get("/api/backup", h.ExportBackup)
		r.Post("/api/restore", h.RestoreBackup)
		r.Post("/api/sync/save", h.SyncSave)
		r.Post("/api/sync/load", h.SyncLoad)

		r.Get("/api/admin", h.AdminProfile)
		r.Put("/api/admin/name", h.UpdateAdminName)
		r.Put("/api/admin/password", h.ChangePassword)
		r.Post("/api/admin/password/reset", h.ResetPassword)
	})

	return r
}
