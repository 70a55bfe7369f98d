package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /users router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/token", h.Login)
	r.Post("/token/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})

	return r
}
