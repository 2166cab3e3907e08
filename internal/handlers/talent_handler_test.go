package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

// fakeTalentService keeps talents in memory, keyed by name.
type fakeTalentService struct {
	byName    map[string]*models.Talent
	lastQuery *models.TalentQuery
	lastReq   *models.UpdateTalentRequest
}

func newFakeTalentService() *fakeTalentService {
	return &fakeTalentService{byName: make(map[string]*models.Talent)}
}

func (f *fakeTalentService) List(_ context.Context, q *models.TalentQuery) ([]*models.Talent, error) {
	f.lastQuery = q
	out := make([]*models.Talent, 0, len(f.byName))
	for _, t := range f.byName {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTalentService) ListNames(_ context.Context, _, _ int64) ([]*models.TalentName, error) {
	out := make([]*models.TalentName, 0, len(f.byName))
	for _, t := range f.byName {
		out = append(out, &models.TalentName{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (f *fakeTalentService) GetByName(_ context.Context, name string) (*models.Talent, error) {
	t, ok := f.byName[name]
	if !ok {
		return nil, services.ErrTalentNotFound
	}
	return t, nil
}

func (f *fakeTalentService) Create(_ context.Context, t *models.Talent) error {
	if _, ok := f.byName[t.Name]; ok {
		return services.ErrTalentExists
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("talent-%d", len(f.byName)+1)
	}
	f.byName[t.Name] = t
	return nil
}

func (f *fakeTalentService) Update(_ context.Context, name string, req *models.UpdateTalentRequest) error {
	t, ok := f.byName[name]
	if !ok {
		return services.ErrTalentNotFound
	}
	f.lastReq = req
	if req.Height != nil {
		t.Height = req.Height
	}
	if req.ThumbnailID != nil {
		t.ThumbnailID = *req.ThumbnailID
	}
	if req.IntroVideoID != nil {
		t.IntroVideoID = *req.IntroVideoID
	}
	return nil
}

func (f *fakeTalentService) Delete(_ context.Context, name string) (*models.Talent, error) {
	t, ok := f.byName[name]
	if !ok {
		return nil, services.ErrTalentNotFound
	}
	delete(f.byName, name)
	return t, nil
}

// fakeMediaService records stored and deleted media in memory. Store runs
// concurrently for thumbnail and video, hence the lock.
type fakeMediaService struct {
	mu      sync.Mutex
	stored  map[string]*models.Media
	deleted []string
	nextID  int
}

func newFakeMediaService() *fakeMediaService {
	return &fakeMediaService{stored: make(map[string]*models.Media)}
}

func (f *fakeMediaService) Store(_ context.Context, kind, owner, filename, contentType string, r io.Reader) (*models.Media, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := &models.Media{
		ID:          fmt.Sprintf("media-%d", f.nextID),
		Kind:        kind,
		Owner:       owner,
		Filename:    filename,
		ContentType: contentType,
		URL:         fmt.Sprintf("/uploads/media-%d", f.nextID),
	}
	f.stored[m.ID] = m
	return m, nil
}

func (f *fakeMediaService) GetMany(_ context.Context, ids []string) (map[string]*models.Media, error) {
	out := make(map[string]*models.Media)
	for _, id := range ids {
		if m, ok := f.stored[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (f *fakeMediaService) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stored[id]; !ok {
		return services.ErrMediaNotFound
	}
	delete(f.stored, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMediaService) DeleteMany(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := f.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// fakeFilterService serves language lookups from a fixed title -> id map.
type fakeFilterService struct {
	options map[string]string
}

func (f *fakeFilterService) Create(_ context.Context, _, title string) (*models.FilterOption, error) {
	return &models.FilterOption{ID: f.options[title], Title: title}, nil
}

func (f *fakeFilterService) List(_ context.Context, _ string) ([]*models.FilterOption, error) {
	return nil, nil
}

func (f *fakeFilterService) UpdateTitle(_ context.Context, _, _, _ string) error { return nil }

func (f *fakeFilterService) Delete(_ context.Context, _, _ string) error { return nil }

func (f *fakeFilterService) FindByTitles(_ context.Context, _ string, titles []string) ([]*models.FilterOption, error) {
	var out []*models.FilterOption
	for _, title := range titles {
		if id, ok := f.options[title]; ok {
			out = append(out, &models.FilterOption{ID: id, Title: title})
		}
	}
	return out, nil
}

type talentFixture struct {
	talents *fakeTalentService
	media   *fakeMediaService
	filters *fakeFilterService
	router  chi.Router
}

func newTalentFixture() *talentFixture {
	f := &talentFixture{
		talents: newFakeTalentService(),
		media:   newFakeMediaService(),
		filters: &fakeFilterService{options: map[string]string{"English": "lang-en", "Hindi": "lang-hi"}},
	}

	h := NewTalentHandler(f.talents, f.media, f.filters, 10, 50)

	r := chi.NewRouter()
	r.Get("/api/talents", h.ListTalents)
	r.Get("/api/talentfilters", h.ListTalentNames)
	r.Post("/api/talents", h.CreateTalent)
	r.Get("/api/talents/{name}", h.GetTalent)
	r.Put("/api/talents/{name}", h.UpdateTalent)
	r.Delete("/api/talents/{name}", h.DeleteTalent)
	f.router = r
	return f
}

func (f *talentFixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type testFile struct {
	field       string
	filename    string
	contentType string
	content     string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...testFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		header.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCreateTalentJSON(t *testing.T) {
	f := newTalentFixture()

	rec, resp := f.do(t, jsonRequest(t, http.MethodPost, "/api/talents", map[string]interface{}{
		"name":           "Asha Rao",
		"birthYear":      1992,
		"gender":         "Female",
		"height":         165.5,
		"languageSpoken": []string{"lang-en"},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	created, ok := f.talents.byName["Asha Rao"]
	require.True(t, ok)
	assert.Equal(t, "Female", created.Gender)
	require.NotNil(t, created.BirthYear)
	assert.Equal(t, 1992, *created.BirthYear)
}

func TestCreateTalentDuplicate(t *testing.T) {
	f := newTalentFixture()
	f.talents.byName["Asha Rao"] = &models.Talent{ID: "t1", Name: "Asha Rao"}

	rec, resp := f.do(t, jsonRequest(t, http.MethodPost, "/api/talents", map[string]interface{}{
		"name": "Asha Rao",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Talent already exists", resp.Error)
}

func TestCreateTalentValidation(t *testing.T) {
	f := newTalentFixture()

	rec, resp := f.do(t, jsonRequest(t, http.MethodPost, "/api/talents", map[string]interface{}{
		"name":      "Asha Rao",
		"gender":    "Unknown",
		"birthYear": 1800,
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.NotNil(t, resp.Errors)
	assert.Empty(t, f.talents.byName)
}

func TestCreateTalentMultipartWithMedia(t *testing.T) {
	f := newTalentFixture()

	req := multipartRequest(t, http.MethodPost, "/api/talents",
		map[string]string{"name": "Asha Rao", "gender": "Female", "height": "165.5"},
		testFile{field: "thumbnail", filename: "head.jpg", contentType: "image/jpeg", content: "jpegbytes"},
		testFile{field: "introVideo", filename: "intro.mp4", contentType: "video/mp4", content: "mp4bytes"},
	)
	rec, resp := f.do(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	created := f.talents.byName["Asha Rao"]
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ThumbnailID)
	assert.NotEmpty(t, created.IntroVideoID)

	require.Len(t, f.media.stored, 2)
	thumb := f.media.stored[created.ThumbnailID]
	require.NotNil(t, thumb)
	assert.Equal(t, models.MediaKindImage, thumb.Kind)
	assert.Equal(t, "Asha Rao", thumb.Owner)
	video := f.media.stored[created.IntroVideoID]
	require.NotNil(t, video)
	assert.Equal(t, models.MediaKindVideo, video.Kind)
}

func TestCreateTalentRejectsWrongContentType(t *testing.T) {
	f := newTalentFixture()

	req := multipartRequest(t, http.MethodPost, "/api/talents",
		map[string]string{"name": "Asha Rao"},
		testFile{field: "thumbnail", filename: "notes.txt", contentType: "text/plain", content: "hello"},
	)
	rec, resp := f.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "thumbnail must be an image", resp.Error)
	assert.Empty(t, f.media.stored)
}

func TestGetTalentNotFound(t *testing.T) {
	f := newTalentFixture()

	rec, resp := f.do(t, httptest.NewRequest(http.MethodGet, "/api/talents/Nobody", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Talent not found", resp.Error)
}

func TestGetTalentExpandsMedia(t *testing.T) {
	f := newTalentFixture()
	f.media.stored["m1"] = &models.Media{ID: "m1", Kind: models.MediaKindImage, URL: "/uploads/m1"}
	f.talents.byName["Asha Rao"] = &models.Talent{ID: "t1", Name: "Asha Rao", ThumbnailID: "m1"}

	rec, resp := f.do(t, httptest.NewRequest(http.MethodGet, "/api/talents/Asha%20Rao", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	thumb, ok := data["thumbnail"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/uploads/m1", thumb["url"])
}

func TestListTalentsResolvesLanguages(t *testing.T) {
	f := newTalentFixture()

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/talents?language=English,Hindi&gender=Female", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.talents.lastQuery)
	assert.Equal(t, []string{"lang-en", "lang-hi"}, f.talents.lastQuery.LanguageIDs)
	assert.Equal(t, "Female", f.talents.lastQuery.Gender)
}

func TestListTalentsUnknownLanguageStillQueries(t *testing.T) {
	f := newTalentFixture()
	f.talents.byName["Asha Rao"] = &models.Talent{ID: "t1", Name: "Asha Rao"}

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/talents?language=Klingon", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.talents.lastQuery)
	assert.True(t, f.talents.lastQuery.FilterByLanguage())
	assert.Empty(t, f.talents.lastQuery.LanguageIDs)
}

func TestListTalentsBadRange(t *testing.T) {
	f := newTalentFixture()

	rec, resp := f.do(t, httptest.NewRequest(http.MethodGet, "/api/talents?height=tall", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "height")
}

func TestListTalentNames(t *testing.T) {
	f := newTalentFixture()
	f.talents.byName["Asha Rao"] = &models.Talent{ID: "t1", Name: "Asha Rao"}

	rec, resp := f.do(t, httptest.NewRequest(http.MethodGet, "/api/talentfilters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	names, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, names, 1)
}

func TestUpdateTalentPartialJSON(t *testing.T) {
	f := newTalentFixture()
	f.talents.byName["Asha Rao"] = &models.Talent{ID: "t1", Name: "Asha Rao", Gender: "Female"}

	rec, resp := f.do(t, jsonRequest(t, http.MethodPut, "/api/talents/Asha%20Rao", map[string]interface{}{
		"height": 170.0,
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Record updated for Asha Rao", data["message"])

	require.NotNil(t, f.talents.lastReq)
	require.NotNil(t, f.talents.lastReq.Height)
	assert.Equal(t, 170.0, *f.talents.lastReq.Height)
	assert.Nil(t, f.talents.lastReq.Gender)
	assert.Nil(t, f.talents.lastReq.BirthYear)
}

func TestUpdateTalentReplacesThumbnail(t *testing.T) {
	f := newTalentFixture()
	f.media.stored["old-thumb"] = &models.Media{ID: "old-thumb", Kind: models.MediaKindImage}
	f.media.stored["old-video"] = &models.Media{ID: "old-video", Kind: models.MediaKindVideo}
	f.talents.byName["Asha Rao"] = &models.Talent{
		ID: "t1", Name: "Asha Rao",
		ThumbnailID: "old-thumb", IntroVideoID: "old-video",
	}

	req := multipartRequest(t, http.MethodPut, "/api/talents/Asha%20Rao",
		nil,
		testFile{field: "thumbnail", filename: "new.jpg", contentType: "image/png", content: "pngbytes"},
	)
	rec, _ := f.do(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	// Old thumbnail released, untouched video slot kept.
	assert.Contains(t, f.media.deleted, "old-thumb")
	assert.NotContains(t, f.media.deleted, "old-video")

	require.NotNil(t, f.talents.lastReq)
	require.NotNil(t, f.talents.lastReq.ThumbnailID)
	assert.Nil(t, f.talents.lastReq.IntroVideoID)
	assert.NotEqual(t, "old-thumb", *f.talents.lastReq.ThumbnailID)
	assert.Contains(t, f.media.stored, *f.talents.lastReq.ThumbnailID)
}

func TestUpdateTalentNotFound(t *testing.T) {
	f := newTalentFixture()

	rec, resp := f.do(t, jsonRequest(t, http.MethodPut, "/api/talents/Nobody", map[string]interface{}{
		"height": 170.0,
	}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Talent not found, please provide a correct name", resp.Error)
}

func TestDeleteTalentReleasesMedia(t *testing.T) {
	f := newTalentFixture()
	f.media.stored["m1"] = &models.Media{ID: "m1", Kind: models.MediaKindImage}
	f.media.stored["m2"] = &models.Media{ID: "m2", Kind: models.MediaKindVideo}
	f.talents.byName["Asha Rao"] = &models.Talent{
		ID: "t1", Name: "Asha Rao",
		ThumbnailID: "m1", IntroVideoID: "m2",
	}

	rec, resp := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/talents/Asha%20Rao", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Entry for Asha Rao is removed", data["message"])

	assert.Empty(t, f.talents.byName)
	assert.Empty(t, f.media.stored)
	assert.ElementsMatch(t, []string{"m1", "m2"}, f.media.deleted)
}

func TestDeleteTalentNotFound(t *testing.T) {
	f := newTalentFixture()

	rec, resp := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/talents/Nobody", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Talent not found", resp.Error)
}
