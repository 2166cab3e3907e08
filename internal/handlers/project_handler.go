package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

type ProjectHandler struct {
	projects   services.ProjectService
	fetchLimit int64
}

func NewProjectHandler(projects services.ProjectService, fetchLimit int64) *ProjectHandler {
	return &ProjectHandler{projects: projects, fetchLimit: fetchLimit}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(validationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	project, err := h.projects.Create(ctx, &req)
	if err != nil {
		if err == services.ErrProjectExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Project already exists"))
			return
		}
		log.Error().Err(err).Str("title", req.Title).Msg("failed to create project")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(project))
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := parseLimitSkip(r.URL.Query(), h.fetchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	projects, err := h.projects.List(ctx, limit, skip)
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve projects"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(projects))
}

// ListProjectNames serves the lightweight title/id projection.
func (h *ProjectHandler) ListProjectNames(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := parseLimitSkip(r.URL.Query(), h.fetchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	names, err := h.projects.ListNames(ctx, limit, skip)
	if err != nil {
		log.Error().Err(err).Msg("failed to list project names")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve projects"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(names))
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	project, err := h.projects.GetByTitle(ctx, title)
	if err != nil {
		if err == services.ErrProjectNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Project not found"))
			return
		}
		log.Error().Err(err).Str("title", title).Msg("failed to get project")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve project"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(project))
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	var req models.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(validationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if err := h.projects.Update(ctx, title, &req); err != nil {
		if err == services.ErrProjectNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Project not found"))
			return
		}
		log.Error().Err(err).Str("title", title).Msg("failed to update project")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse(fmt.Sprintf("Record updated for %s", title)))
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if err := h.projects.Delete(ctx, title); err != nil {
		if err == services.ErrProjectNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Project not found"))
			return
		}
		log.Error().Err(err).Str("title", title).Msg("failed to delete project")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse(fmt.Sprintf("Entry for %s is removed", title)))
}
