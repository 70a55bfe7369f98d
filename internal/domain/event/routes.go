package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /events router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Get("/{category}/{date}", h.GetPublic)
	r.Get("/{category}", h.ListPublic)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListRecent)
		r.Get("/inactive", h.ListInactive)
		r.Put("/{category}/{date}", h.UpdateBaseData)
		r.Delete("/{category}/{date}", h.Delete)
		r.Patch("/{category}/{date}/description", h.UpdateDescription)
		r.Delete("/{category}/{date}/description", h.DeleteDescription)
		r.Patch("/{category}/{date}/cover", h.UpdateCover)
		r.Delete("/{category}/{date}/cover", h.DeleteCover)
		r.Patch("/{category}/{date}/active", h.ToggleActive)
		r.Patch("/{category}/{date}/pictures", h.AddPictures)
	})

	return r
}

// PictureRoutes returns the /pictures router
func (h *Handler) PictureRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListPictures)
		r.Post("/", h.UploadPictures)
		r.Delete("/", h.DeletePictures)
	})

	return r
}
