package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/castboard/backend/internal/middleware"
	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

type BookmarkHandler struct {
	bookmarks  services.BookmarkService
	fetchLimit int64
}

func NewBookmarkHandler(bookmarks services.BookmarkService, fetchLimit int64) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, fetchLimit: fetchLimit}
}

func (h *BookmarkHandler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.CreateBookmarkRequest
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

	bookmark, err := h.bookmarks.Create(ctx, userID, &req)
	if err != nil {
		if err == services.ErrBookmarkExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Bookmark already exists"))
			return
		}
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create bookmark")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(bookmark))
}

func (h *BookmarkHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := parseLimitSkip(r.URL.Query(), h.fetchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	bookmarks, err := h.bookmarks.List(ctx, limit, skip)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookmarks")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve bookmarks"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(bookmarks))
}

func (h *BookmarkHandler) GetBookmark(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	bookmark, err := h.bookmarks.GetByName(ctx, name)
	if err != nil {
		if err == services.ErrBookmarkNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Bookmark not found"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("failed to get bookmark")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve bookmark"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(bookmark))
}

// ToggleBookmark adds or removes one talent from the bookmark list.
func (h *BookmarkHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req models.ToggleBookmarkRequest
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

	bookmark, err := h.bookmarks.Toggle(ctx, name, req.Talent)
	if err != nil {
		if err == services.ErrBookmarkNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Bookmark not found"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("failed to toggle bookmark entry")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(bookmark))
}

func (h *BookmarkHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if err := h.bookmarks.Delete(ctx, name); err != nil {
		if err == services.ErrBookmarkNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Bookmark not found"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("failed to delete bookmark")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse(fmt.Sprintf("Entry for %s is removed", name)))
}
