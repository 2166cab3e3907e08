package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

const (
	queryTimeout = 10 * time.Second
	mediaTimeout = 60 * time.Second
)

// TalentHandler owns the talent query and lifecycle flows: dynamic list
// filtering, and create/update/delete coordinated with attached-media
// storage.
type TalentHandler struct {
	talents services.TalentService
	media   services.MediaService
	filters services.FilterService

	fetchLimit  int64
	maxUploadMB int64
}

func NewTalentHandler(talents services.TalentService, media services.MediaService, filters services.FilterService, fetchLimit, maxUploadMB int64) *TalentHandler {
	return &TalentHandler{
		talents:     talents,
		media:       media,
		filters:     filters,
		fetchLimit:  fetchLimit,
		maxUploadMB: maxUploadMB,
	}
}

func (h *TalentHandler) ListTalents(w http.ResponseWriter, r *http.Request) {
	q, err := services.ParseTalentQuery(r.URL.Query(), h.fetchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if q.FilterByLanguage() {
		opts, err := h.filters.FindByTitles(ctx, models.FilterKindLanguage, q.LanguageTitles)
		if err != nil {
			log.Error().Err(err).Strs("titles", q.LanguageTitles).Msg("language lookup failed")
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve talents"))
			return
		}
		// No resolutions leaves LanguageIDs empty and the query matches
		// nothing, which is the documented behavior for unknown titles.
		for _, opt := range opts {
			q.LanguageIDs = append(q.LanguageIDs, opt.ID)
		}
	}

	talents, err := h.talents.List(ctx, q)
	if err != nil {
		log.Error().Err(err).Msg("failed to list talents")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve talents"))
		return
	}

	if err := h.attachMedia(ctx, talents); err != nil {
		log.Error().Err(err).Msg("failed to expand talent media")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve talents"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(talents))
}

// ListTalentNames serves the lightweight name/id projection for pickers.
func (h *TalentHandler) ListTalentNames(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := parseLimitSkip(r.URL.Query(), h.fetchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	names, err := h.talents.ListNames(ctx, limit, skip)
	if err != nil {
		log.Error().Err(err).Msg("failed to list talent names")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve talents"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(names))
}

func (h *TalentHandler) GetTalent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	talent, err := h.talents.GetByName(ctx, name)
	if err != nil {
		if err == services.ErrTalentNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Talent not found"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("failed to get talent")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve talent"))
		return
	}

	if err := h.attachMedia(ctx, []*models.Talent{talent}); err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to expand talent media")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to retrieve talent"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(talent))
}

func (h *TalentHandler) CreateTalent(w http.ResponseWriter, r *http.Request) {
	req, uploads, err := h.parseCreateTalentRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}
	defer uploads.close()

	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(validationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), mediaTimeout)
	defer cancel()

	// Pre-check only buys a clean 409; the unique name index is what
	// actually guarantees no duplicate lands under a race.
	if _, err := h.talents.GetByName(ctx, req.Name); err == nil {
		writeJSON(w, http.StatusConflict, models.NewErrorResponse("Talent already exists"))
		return
	} else if err != services.ErrTalentNotFound {
		log.Error().Err(err).Str("name", req.Name).Msg("talent lookup failed")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	t := &models.Talent{
		Name:           req.Name,
		BirthYear:      req.BirthYear,
		Gender:         req.Gender,
		Height:         req.Height,
		Email:          req.Email,
		Phone:          req.Phone,
		LanguageSpoken: req.LanguageSpoken,
		Projects:       req.Projects,
	}
	if req.WithApplause != nil {
		t.WithApplause = *req.WithApplause
	}

	// Both uploads must land before the record is written.
	thumb, video, err := h.storeUploads(ctx, req.Name, uploads)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("media store failed")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to store media"))
		return
	}
	if thumb != nil {
		t.ThumbnailID, t.Thumbnail = thumb.ID, thumb
	}
	if video != nil {
		t.IntroVideoID, t.IntroVideo = video.ID, video
	}

	if err := h.talents.Create(ctx, t); err != nil {
		h.releaseMedia(ctx, t.Name, t.ThumbnailID, t.IntroVideoID)
		if err == services.ErrTalentExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Talent already exists"))
			return
		}
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create talent")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(t))
}

func (h *TalentHandler) UpdateTalent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	req, uploads, err := h.parseUpdateTalentRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}
	defer uploads.close()

	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(validationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), mediaTimeout)
	defer cancel()

	existing, err := h.talents.GetByName(ctx, name)
	if err != nil {
		if err == services.ErrTalentNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Talent not found, please provide a correct name"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("talent lookup failed")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	if uploads.any() {
		// Only replaced slots release their previous media; an untouched
		// slot keeps what it has.
		var old []string
		if uploads.thumbnail != nil {
			old = append(old, existing.ThumbnailID)
		}
		if uploads.introVideo != nil {
			old = append(old, existing.IntroVideoID)
		}
		if err := h.deleteOldMedia(ctx, old...); err != nil {
			log.Error().Err(err).Str("name", name).Msg("failed to delete previous media")
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to replace media"))
			return
		}

		thumb, video, err := h.storeUploads(ctx, name, uploads)
		if err != nil {
			log.Error().Err(err).Str("name", name).Msg("media store failed")
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to store media"))
			return
		}
		if thumb != nil {
			id := thumb.ID
			req.ThumbnailID = &id
		}
		if video != nil {
			id := video.ID
			req.IntroVideoID = &id
		}
	}

	if err := h.talents.Update(ctx, name, req); err != nil {
		if err == services.ErrTalentNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Talent not found, please provide a correct name"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("failed to update talent")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewMessageResponse(fmt.Sprintf("Record updated for %s", name)))
}

func (h *TalentHandler) DeleteTalent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), mediaTimeout)
	defer cancel()

	deleted, err := h.talents.Delete(ctx, name)
	if err != nil {
		if err == services.ErrTalentNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Talent not found"))
			return
		}
		log.Error().Err(err).Str("name", name).Msg("failed to delete talent")
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Something went wrong"))
		return
	}

	// Record first, media second: a failed release orphans a blob that a
	// sweep can reclaim, while the reverse order could leave a live record
	// pointing at dead media.
	h.releaseMedia(ctx, name, deleted.ThumbnailID, deleted.IntroVideoID)

	writeJSON(w, http.StatusOK, models.NewMessageResponse(fmt.Sprintf("Entry for %s is removed", name)))
}

// attachMedia expands thumbnail/intro-video references across a page of
// talents with a single media lookup.
func (h *TalentHandler) attachMedia(ctx context.Context, talents []*models.Talent) error {
	ids := make([]string, 0, len(talents)*2)
	for _, t := range talents {
		if t.ThumbnailID != "" {
			ids = append(ids, t.ThumbnailID)
		}
		if t.IntroVideoID != "" {
			ids = append(ids, t.IntroVideoID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	byID, err := h.media.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, t := range talents {
		t.Thumbnail = byID[t.ThumbnailID]
		t.IntroVideo = byID[t.IntroVideoID]
	}
	return nil
}

// storeUploads persists the supplied files concurrently. On failure,
// whichever side landed is released so an aborted request leaves nothing
// behind.
func (h *TalentHandler) storeUploads(ctx context.Context, owner string, uploads *talentUploads) (*models.Media, *models.Media, error) {
	if !uploads.any() {
		return nil, nil, nil
	}

	var thumb, video *models.Media
	g, gctx := errgroup.WithContext(ctx)

	if f := uploads.thumbnail; f != nil {
		g.Go(func() error {
			m, err := h.media.Store(gctx, models.MediaKindImage, owner, f.filename, f.contentType, f.file)
			if err != nil {
				return err
			}
			thumb = m
			return nil
		})
	}
	if f := uploads.introVideo; f != nil {
		g.Go(func() error {
			m, err := h.media.Store(gctx, models.MediaKindVideo, owner, f.filename, f.contentType, f.file)
			if err != nil {
				return err
			}
			video = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var stored []string
		if thumb != nil {
			stored = append(stored, thumb.ID)
		}
		if video != nil {
			stored = append(stored, video.ID)
		}
		if len(stored) > 0 {
			if derr := h.media.DeleteMany(ctx, stored); derr != nil {
				log.Error().Err(derr).Str("talent", owner).Msg("failed to clean up media after aborted store")
			}
		}
		return nil, nil, err
	}
	return thumb, video, nil
}

// deleteOldMedia removes previous media ahead of replacements. Empty and
// already-missing slots are fine.
func (h *TalentHandler) deleteOldMedia(ctx context.Context, ids ...string) error {
	present := ids[:0]
	for _, id := range ids {
		if id != "" {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := h.media.DeleteMany(ctx, present); err != nil && !errors.Is(err, services.ErrMediaNotFound) {
		return err
	}
	return nil
}

// releaseMedia best-effort deletes media records; failures are logged,
// never surfaced.
func (h *TalentHandler) releaseMedia(ctx context.Context, owner string, ids ...string) {
	var present []string
	for _, id := range ids {
		if id != "" {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return
	}
	if err := h.media.DeleteMany(ctx, present); err != nil && !errors.Is(err, services.ErrMediaNotFound) {
		log.Error().Err(err).Str("talent", owner).Msg("failed to release media")
	}
}
