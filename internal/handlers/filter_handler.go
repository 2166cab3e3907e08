package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

// FilterHandler serves the filter-reference collections. Each route group
// (language, genre, platform, skills) binds a kind at mount time.
type FilterHandler struct {
	filters services.FilterService
}

func NewFilterHandler(filters services.FilterService) *FilterHandler {
	return &FilterHandler{filters: filters}
}

func (h *FilterHandler) Create(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.FilterOptionRequest
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

		opt, err := h.filters.Create(ctx, kind, req.Title)
		if err != nil {
			if err == services.ErrFilterExists {
				writeJSON(w, http.StatusConflict, models.NewErrorResponse("Title already exists"))
				return
			}
			log.Error().Err(err).Str("kind", kind).Msg("failed to create filter option")
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
			return
		}

		writeJSON(w, http.StatusOK, models.NewSuccessResponse(opt))
	}
}

func (h *FilterHandler) List(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		opts, err := h.filters.List(ctx, kind)
		if err != nil {
			log.Error().Err(err).Str("kind", kind).Msg("failed to list filter options")
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
			return
		}

		writeJSON(w, http.StatusOK, models.NewSuccessResponse(opts))
	}
}

func (h *FilterHandler) Update(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := chi.URLParam(r, "title")

		var req models.FilterOptionRequest
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

		if err := h.filters.UpdateTitle(ctx, kind, title, req.Title); err != nil {
			switch err {
			case services.ErrFilterNotFound:
				writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Title not found"))
			case services.ErrFilterExists:
				writeJSON(w, http.StatusConflict, models.NewErrorResponse("Title already exists"))
			default:
				log.Error().Err(err).Str("kind", kind).Str("title", title).Msg("failed to update filter option")
				writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
			}
			return
		}

		writeJSON(w, http.StatusOK, models.NewMessageResponse("Record updated for "+title))
	}
}

func (h *FilterHandler) Delete(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := chi.URLParam(r, "title")

		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		if err := h.filters.Delete(ctx, kind, title); err != nil {
			if err == services.ErrFilterNotFound {
				writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Title not found"))
				return
			}
			log.Error().Err(err).Str("kind", kind).Str("title", title).Msg("failed to delete filter option")
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
			return
		}

		writeJSON(w, http.StatusOK, models.NewMessageResponse("Entry for "+title+" is removed"))
	}
}
