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

type LinkHandler struct {
	linkService *service.LinkService
}

func NewLinkHandler(linkService *service.LinkService) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
	}
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	link, err := h.linkService.Create(r.Context(), actorID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrLinkTitleRequired), errors.Is(err, model.ErrLinkURLRequired):
			httputil.WriteValidationError(w, err.Error())
		default:
			log.Printf("[ERROR] Create link handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create link")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	linkID := chi.URLParam(r, "id")

	if err := h.linkService.Delete(r.Context(), linkID, actorID); err != nil {
		switch {
		case errors.Is(err, model.ErrLinkNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] Delete link handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete link")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Link deleted"})
}
