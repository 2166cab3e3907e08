package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

// fakeUserService keeps users in memory with plain-text passwords.
type fakeUserService struct {
	byEmail   map[string]*models.User
	passwords map[string]string
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		byEmail:   make(map[string]*models.User),
		passwords: make(map[string]string),
	}
}

func (f *fakeUserService) Register(_ context.Context, req *models.RegisterRequest) (*models.User, error) {
	if _, ok := f.byEmail[req.Email]; ok {
		return nil, services.ErrEmailExists
	}
	u := &models.User{
		ID:    fmt.Sprintf("user-%d", len(f.byEmail)+1),
		Email: req.Email,
		Name:  req.Name,
	}
	f.byEmail[req.Email] = u
	f.passwords[req.Email] = req.Password
	return u, nil
}

func (f *fakeUserService) Login(_ context.Context, req *models.LoginRequest) (*models.User, error) {
	u, ok := f.byEmail[req.Email]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	if f.passwords[req.Email] != req.Password {
		return nil, services.ErrInvalidPassword
	}
	return u, nil
}

func (f *fakeUserService) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (f *fakeUserService) Update(_ context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	u, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Password != nil {
		f.passwords[u.Email] = *req.Password
	}
	return u, nil
}

func (f *fakeUserService) Delete(_ context.Context, id string) error {
	u, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	delete(f.byEmail, u.Email)
	delete(f.passwords, u.Email)
	return nil
}

const authTestSecret = "auth-test-secret"

func doAuth(t *testing.T, h http.HandlerFunc, target string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := jsonRequest(t, http.MethodPost, target, body)
	rec := httptest.NewRecorder()
	h(rec, req)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestRegisterIssuesToken(t *testing.T) {
	users := newFakeUserService()
	h := NewAuthHandler(users, authTestSecret, time.Hour)

	rec, resp := doAuth(t, h.Register, "/api/register", map[string]string{
		"email":    "asha@example.com",
		"password": "secret123",
		"name":     "Asha",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	rawToken, ok := data["token"].(string)
	require.True(t, ok)

	// The token must verify with the configured secret and carry the
	// new user's id.
	token, err := jwt.Parse(rawToken, func(*jwt.Token) (interface{}, error) {
		return []byte(authTestSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims["user_id"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserService()
	h := NewAuthHandler(users, authTestSecret, time.Hour)

	body := map[string]string{"email": "asha@example.com", "password": "secret123", "name": "Asha"}
	rec, _ := doAuth(t, h.Register, "/api/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doAuth(t, h.Register, "/api/register", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", resp.Error)
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(newFakeUserService(), authTestSecret, time.Hour)

	rec, resp := doAuth(t, h.Register, "/api/register", map[string]string{
		"email":    "not-an-email",
		"password": "123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", resp.Error)
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUserService()
	h := NewAuthHandler(users, authTestSecret, time.Hour)

	_, err := users.Register(context.Background(), &models.RegisterRequest{
		Email: "asha@example.com", Password: "secret123", Name: "Asha",
	})
	require.NoError(t, err)

	rec, resp := doAuth(t, h.Login, "/api/login", map[string]string{
		"email":    "asha@example.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestLoginBadCredentials(t *testing.T) {
	users := newFakeUserService()
	h := NewAuthHandler(users, authTestSecret, time.Hour)

	_, err := users.Register(context.Background(), &models.RegisterRequest{
		Email: "asha@example.com", Password: "secret123", Name: "Asha",
	})
	require.NoError(t, err)

	// Wrong password and unknown email get the same answer.
	rec, resp := doAuth(t, h.Login, "/api/login", map[string]string{
		"email": "asha@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", resp.Error)

	rec, resp = doAuth(t, h.Login, "/api/login", map[string]string{
		"email": "nobody@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", resp.Error)
}
