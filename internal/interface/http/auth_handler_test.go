package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/clinicahealth/clinica-backend/internal/application"
	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
	"github.com/clinicahealth/clinica-backend/internal/domain/repository"
	"github.com/clinicahealth/clinica-backend/internal/interface/middleware"
	"github.com/clinicahealth/clinica-backend/pkg/helpers"
	"github.com/clinicahealth/clinica-backend/pkg/validation"
)

var setupOnce sync.Once

func setup() {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})
}

type memUserRepo struct {
	users    map[string]*entity.User
	patients map[string]*entity.Patient
	nextID   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}, patients: map[string]*entity.Patient{}}
}

func (m *memUserRepo) CreateUserAndPatient(_ context.Context, u *entity.User, p *entity.Patient) error {
	if _, ok := m.users[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.nextID++
	u.ID = fmt.Sprintf("id-%d", m.nextID)
	p.UserID = u.ID
	cu := *u
	cp := *p
	m.users[u.Email] = &cu
	m.patients[p.UserID] = &cp
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string, includeSecrets bool) (*entity.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	if !includeSecrets {
		c.Password = ""
		c.Validation.OTP = 0
	}
	return &c, nil
}

func (m *memUserRepo) UpdateValidation(_ context.Context, email string, v entity.Validation) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Validation = v
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, email, newHash string) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = newHash
	return nil
}

func (m *memUserRepo) UpdateFCMToken(_ context.Context, email, token string) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.FCMToken = token
	return nil
}

func (m *memUserRepo) UpdateAvatar(_ context.Context, email, url string) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.AvatarURL = url
	return nil
}

type envelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *memUserRepo) {
	t.Helper()
	setup()

	repo := newMemUserRepo()
	tokens := helpers.NewTokenManager(
		"access-secret", "refresh-secret", "action-secret",
		time.Hour, 24*time.Hour, 3*time.Minute,
	)
	svc := application.NewAuthService(repo, tokens, nil, nil, 3*time.Minute)
	h := NewAuthHandler(svc, nil, nil, "", false)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/verify", h.Verify)
	api.POST("/auth/resend-otp", h.ResendOTP)
	api.POST("/auth/sign-in", h.SignIn)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/forget-password", h.ForgetPassword)
	api.POST("/auth/reset-password", h.ResetPassword)

	protected := api.Group("/")
	protected.Use(middleware.Auth(tokens))
	protected.POST("/auth/change-password", h.ChangePassword)

	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, mod func(*http.Request)) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func TestRegisterVerifySignInFlow(t *testing.T) {
	r, repo := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Jane Roe",
		"email":    "a@x.com",
		"password": "pw1pw1pw1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	actionToken, _ := env.Data["token"].(string)
	require.NotEmpty(t, actionToken)

	otp := repo.users["a@x.com"].Validation.OTP

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/verify", gin.H{"otp": otp}, func(req *http.Request) {
		req.Header.Set("token", actionToken)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Account verified successfully", env.Message)
	require.NotEmpty(t, env.Data["access_token"])

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie, "verify must set the refresh cookie")
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, cookie.Value)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/sign-in", gin.H{
		"email":    "a@x.com",
		"password": "pw1pw1pw1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, env.Data["access_token"])
	require.NotNil(t, refreshCookie(t, w))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Jane Roe",
		"email":    "a@x.com",
		"password": "short",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, env.Success)
}

func TestVerifyRejectsOutOfRangeOTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/verify", gin.H{"otp": 42}, func(req *http.Request) {
		req.Header.Set("token", "whatever")
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshUsesCookie(t *testing.T) {
	r, repo := newTestRouter(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Jane Roe", "email": "a@x.com", "password": "pw1pw1pw1",
	}, nil)
	actionToken := env.Data["token"].(string)
	otp := repo.users["a@x.com"].Validation.OTP

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/verify", gin.H{"otp": otp}, func(req *http.Request) {
		req.Header.Set("token", actionToken)
	})
	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/refresh", nil, func(req *http.Request) {
		req.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, env.Data["access_token"])

	// no cookie at all
	w, env = doJSON(t, r, http.MethodPost, "/api/auth/refresh", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, env.Success)
}

func TestChangePasswordRequiresBearerToken(t *testing.T) {
	r, repo := newTestRouter(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Jane Roe", "email": "a@x.com", "password": "pw1pw1pw1",
	}, nil)
	actionToken := env.Data["token"].(string)
	otp := repo.users["a@x.com"].Validation.OTP

	_, env = doJSON(t, r, http.MethodPost, "/api/auth/verify", gin.H{"otp": otp}, func(req *http.Request) {
		req.Header.Set("token", actionToken)
	})
	access := env.Data["access_token"].(string)

	body := gin.H{"old_password": "pw1pw1pw1", "new_password": "pw2pw2pw2"}

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/change-password", body, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/change-password", body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Password changed successfully", env.Message)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/sign-in", gin.H{
		"email": "a@x.com", "password": "pw2pw2pw2",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestForgetResetFlow(t *testing.T) {
	r, repo := newTestRouter(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Jane Roe", "email": "a@x.com", "password": "pw1pw1pw1",
	}, nil)
	actionToken := env.Data["token"].(string)
	otp := repo.users["a@x.com"].Validation.OTP
	_, _ = doJSON(t, r, http.MethodPost, "/api/auth/verify", gin.H{"otp": otp}, func(req *http.Request) {
		req.Header.Set("token", actionToken)
	})

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/forget-password", gin.H{"email": "a@x.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resetToken := env.Data["token"].(string)
	require.NotEmpty(t, resetToken)

	// the account must confirm the emailed code before the reset is allowed
	newOTP := repo.users["a@x.com"].Validation.OTP
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/verify", gin.H{"otp": newOTP}, func(req *http.Request) {
		req.Header.Set("token", resetToken)
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", gin.H{"new_password": "pw3pw3pw3"}, func(req *http.Request) {
		req.Header.Set("token", resetToken)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Password reset successfully!", env.Message)
	require.NotNil(t, refreshCookie(t, w))

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/sign-in", gin.H{
		"email": "a@x.com", "password": "pw3pw3pw3",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
