package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devfolio/internal/httputil"
	"devfolio/internal/model"
	"devfolio/internal/service"
	"devfolio/internal/transport/http/middleware"
)

const defaultExploreLimit = 100

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(r.Context(), actorID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired), errors.Is(err, model.ErrDescriptionRequired):
			httputil.WriteValidationError(w, err.Error())
		default:
			log.Printf("[ERROR] Create project handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	project, err := h.projectService.Get(r.Context(), projectID, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] Get project handler: %v", err)
			httputil.WriteInternalError(w, "Failed to fetch project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	projectID := chi.URLParam(r, "id")

	var req model.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, actorID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, err.Error())
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, err.Error())
		case errors.Is(err, model.ErrTitleRequired), errors.Is(err, model.ErrDescriptionRequired):
			httputil.WriteValidationError(w, err.Error())
		default:
			log.Printf("[ERROR] Update project handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	projectID := chi.URLParam(r, "id")

	if err := h.projectService.Delete(r.Context(), projectID, actorID); err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, err.Error())
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, err.Error())
		default:
			log.Printf("[ERROR] Delete project handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}

// ListMine returns the authenticated user's own projects.
func (h *ProjectHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	h.list(w, r, service.ProjectFilter{OwnerID: actorID}, &actorID)
}

// Explore returns the newest projects across all users.
func (h *ProjectHandler) Explore(w http.ResponseWriter, r *http.Request) {
	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	limit := defaultExploreLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > defaultExploreLimit {
			httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	projects, err := h.projectService.Explore(r.Context(), limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Explore handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch projects")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// Bookmarked returns projects the authenticated user has bookmarked.
func (h *ProjectHandler) Bookmarked(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	h.list(w, r, service.ProjectFilter{BookmarkedBy: actorID}, &actorID)
}

// Search returns projects matching a tech-stack substring, newest first.
// No match yields an empty list, not an error.
func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	tech := r.URL.Query().Get("tech")
	if tech == "" {
		httputil.WriteBadRequest(w, "Query parameter 'tech' is required")
		return
	}

	var viewerID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	h.list(w, r, service.ProjectFilter{Tech: tech}, viewerID)
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request, filter service.ProjectFilter, viewerID *string) {
	projects, err := h.projectService.List(r.Context(), filter, viewerID)
	if err != nil {
		log.Printf("[ERROR] List projects handler: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch projects")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}
