package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devfolio/internal/httputil"
	"devfolio/internal/model"
	"devfolio/internal/service"
	"devfolio/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the full profile view for a username.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetProfile(r.Context(), username, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] GetProfile handler: %v", err)
			httputil.WriteInternalError(w, "Failed to fetch profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Me returns the authenticated user's own record.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), actorID)
	if err != nil {
		log.Printf("[ERROR] Me handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// List returns the user directory.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	users, err := h.userService.List(r.Context(), viewerID)
	if err != nil {
		log.Printf("[ERROR] List users handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// UpdateProfile applies a partial edit to the authenticated user's profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), actorID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists), errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] UpdateProfile handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
