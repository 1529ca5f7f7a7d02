package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devfolio/internal/httputil"
	"devfolio/internal/model"
	"devfolio/internal/service"
	"devfolio/internal/transport/http/middleware"
)

// InteractionHandler exposes the follow/like/bookmark toggles and their
// status queries.
type InteractionHandler struct {
	interactionService *service.InteractionService
}

func NewInteractionHandler(interactionService *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
	}
}

// ToggleFollow flips the follow edge from the actor to the target user.
func (h *InteractionHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	targetID := chi.URLParam(r, "id")
	added, err := h.interactionService.Toggle(r.Context(), model.RelationFollow, actorID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] ToggleFollow handler: %v", err)
			httputil.WriteInternalError(w, "Failed to toggle follow")
		}
		return
	}

	action := "unfollowed"
	if added {
		action = "followed"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"action": action})
}

// FollowStatus reports whether the viewer follows the target user.
// Unauthenticated viewers get false, never an error.
func (h *InteractionHandler) FollowStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, model.RelationFollow, "following")
}

// ToggleLike flips the actor's like on a project.
func (h *InteractionHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggleProjectEdge(w, r, model.RelationLike, "liked")
}

// LikeStatus reports whether the viewer has liked the project.
func (h *InteractionHandler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, model.RelationLike, "liked")
}

// ToggleBookmark flips the actor's bookmark on a project.
func (h *InteractionHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggleProjectEdge(w, r, model.RelationBookmark, "bookmarked")
}

// BookmarkStatus reports whether the viewer has bookmarked the project.
func (h *InteractionHandler) BookmarkStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, model.RelationBookmark, "bookmarked")
}

func (h *InteractionHandler) toggleProjectEdge(w http.ResponseWriter, r *http.Request, rel model.Relation, field string) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	projectID := chi.URLParam(r, "id")
	added, err := h.interactionService.Toggle(r.Context(), rel, actorID, projectID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] Toggle %s handler: %v", rel, err)
			httputil.WriteInternalError(w, "Failed to toggle "+rel.String())
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{field: added})
}

// writeStatus answers a status query. Status never fails: on any error the
// viewer is told false, matching the hydrate-initial-UI-state contract.
func (h *InteractionHandler) writeStatus(w http.ResponseWriter, r *http.Request, rel model.Relation, field string) {
	var actorID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		actorID = &id
	}

	targetID := chi.URLParam(r, "id")
	present, err := h.interactionService.Status(r.Context(), rel, actorID, targetID)
	if err != nil {
		log.Printf("[ERROR] %s status handler: %v", rel, err)
		present = false
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{field: present})
}
