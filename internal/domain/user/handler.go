package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/velmuzhov/photosite/internal/middleware"
	"github.com/velmuzhov/photosite/internal/pkg/jwt"
	"github.com/velmuzhov/photosite/internal/pkg/response"
)

// Handler handles user HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login handles POST /users/token with form fields username and password
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	pass := r.PostFormValue("password")
	if username == "" || pass == "" {
		response.BadRequest(w, "Username and password are required")
		return
	}

	tokens, err := h.service.Login(r.Context(), username, pass)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Incorrect username or password")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		response.InternalError(w, "")
		return
	}

	response.OK(w, tokens)
}

// Refresh handles POST /users/token/refresh with the refresh token as the
// bearer credential.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		response.Unauthorized(w, "Not authenticated")
		return
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		response.Unauthorized(w, "Invalid authorization header format")
		return
	}

	tokens, err := h.service.Refresh(r.Context(), parts[1])
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, jwt.ErrInvalidToken):
			response.Unauthorized(w, "Could not validate credentials")
		case errors.Is(err, jwt.ErrExpiredToken):
			response.Unauthorized(w, "Token expired")
		default:
			log.Error().Err(err).Msg("Token refresh failed")
			response.InternalError(w, "")
		}
		return
	}

	response.OK(w, tokens)
}

// Me handles GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		log.Error().Err(err).Msg("Failed to load user")
		response.InternalError(w, "")
		return
	}

	response.OK(w, UserResponseFromEntity(u))
}
