package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/castboard/backend/internal/models"
)

// uploadedFile is one file pulled out of a multipart request.
type uploadedFile struct {
	file        multipart.File
	filename    string
	contentType string
}

// talentUploads holds the optional media files riding on a talent request.
type talentUploads struct {
	thumbnail  *uploadedFile
	introVideo *uploadedFile
}

func (u *talentUploads) any() bool {
	return u.thumbnail != nil || u.introVideo != nil
}

func (u *talentUploads) close() {
	if u.thumbnail != nil {
		u.thumbnail.file.Close()
	}
	if u.introVideo != nil {
		u.introVideo.file.Close()
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxMB int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxMB*1024*1024)
	if err := r.ParseMultipartForm(maxMB * 1024 * 1024); err != nil {
		return errors.New("file too large or invalid form data")
	}
	return nil
}

// parseCreateTalentRequest accepts a JSON body or a multipart form; files
// only ride along on multipart.
func (h *TalentHandler) parseCreateTalentRequest(w http.ResponseWriter, r *http.Request) (*models.CreateTalentRequest, *talentUploads, error) {
	if !isMultipart(r) {
		var req models.CreateTalentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &req, &talentUploads{}, nil
	}

	if err := parseMultipart(w, r, h.maxUploadMB); err != nil {
		return nil, nil, err
	}

	req := &models.CreateTalentRequest{
		Name:     r.FormValue("name"),
		Gender:   r.FormValue("gender"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Projects: r.FormValue("projects"),
	}
	if v := r.FormValue("birthYear"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid birthYear %q", v)
		}
		req.BirthYear = &n
	}
	if v := r.FormValue("height"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid height %q", v)
		}
		req.Height = &f
	}
	if v := r.FormValue("languageSpoken"); v != "" {
		req.LanguageSpoken = splitCSV(v)
	}
	if v := r.FormValue("withApplause"); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid withApplause %q", v)
		}
		req.WithApplause = &b
	}

	uploads, err := parseTalentUploads(r)
	if err != nil {
		return nil, nil, err
	}
	return req, uploads, nil
}

// parseUpdateTalentRequest distinguishes absent fields from empty ones so
// omitted fields stay untouched.
func (h *TalentHandler) parseUpdateTalentRequest(w http.ResponseWriter, r *http.Request) (*models.UpdateTalentRequest, *talentUploads, error) {
	if !isMultipart(r) {
		var req models.UpdateTalentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &req, &talentUploads{}, nil
	}

	if err := parseMultipart(w, r, h.maxUploadMB); err != nil {
		return nil, nil, err
	}

	req := &models.UpdateTalentRequest{}
	form := r.MultipartForm

	if v, ok := formValue(form, "gender"); ok {
		req.Gender = &v
	}
	if v, ok := formValue(form, "email"); ok {
		req.Email = &v
	}
	if v, ok := formValue(form, "phone"); ok {
		req.Phone = &v
	}
	if v, ok := formValue(form, "projects"); ok {
		req.Projects = &v
	}
	if v, ok := formValue(form, "birthYear"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid birthYear %q", v)
		}
		req.BirthYear = &n
	}
	if v, ok := formValue(form, "height"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid height %q", v)
		}
		req.Height = &f
	}
	if v, ok := formValue(form, "languageSpoken"); ok {
		req.LanguageSpoken = splitCSV(v)
		if req.LanguageSpoken == nil {
			req.LanguageSpoken = []string{}
		}
	}
	if v, ok := formValue(form, "withApplause"); ok {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid withApplause %q", v)
		}
		req.WithApplause = &b
	}

	uploads, err := parseTalentUploads(r)
	if err != nil {
		return nil, nil, err
	}
	return req, uploads, nil
}

func formValue(form *multipart.Form, key string) (string, bool) {
	vs, ok := form.Value[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseTalentUploads(r *http.Request) (*talentUploads, error) {
	uploads := &talentUploads{}

	thumb, err := formFile(r, "thumbnail")
	if err != nil {
		return nil, err
	}
	if thumb != nil && !strings.HasPrefix(thumb.contentType, "image/") {
		thumb.file.Close()
		return nil, errors.New("thumbnail must be an image")
	}
	uploads.thumbnail = thumb

	video, err := formFile(r, "introVideo")
	if err != nil {
		uploads.close()
		return nil, err
	}
	if video != nil && !strings.HasPrefix(video.contentType, "video/") {
		video.file.Close()
		uploads.close()
		return nil, errors.New("introVideo must be a video")
	}
	uploads.introVideo = video

	return uploads, nil
}

func formFile(r *http.Request, field string) (*uploadedFile, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &uploadedFile{
		file:        file,
		filename:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
	}, nil
}
