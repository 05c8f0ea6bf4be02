package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teju/task-manager/backend/internal/auth"
	"github.com/teju/task-manager/backend/internal/models"
	"github.com/teju/task-manager/backend/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeUserStore resolves a single known user by email.
type fakeUserStore struct {
	user *models.User
}

func (f *fakeUserStore) CreateUser(context.Context, string, string, string) (*models.User, error) {
	panic("not used")
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, store.ErrNotFound
}

func setupProtectedRouter(t *testing.T, users auth.UserStore, tokens *auth.TokenService) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(Authenticator(tokens, users))
		r.Use(RequireUser)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			w.Write([]byte(user.Email))
		})
	})
	return r
}

func TestAuthenticator(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	knownUser := &models.User{ID: 1, Email: "a@x.com", FullName: "A"}

	validToken, err := tokens.Issue("a@x.com")
	require.NoError(t, err)

	deletedUserToken, err := tokens.Issue("gone@x.com")
	require.NoError(t, err)

	expired, err := auth.NewTokenService(testSecret, -time.Minute).Issue("a@x.com")
	require.NoError(t, err)

	foreign, err := auth.NewTokenService("another-32-byte-secret-for-tests", time.Hour).Issue("a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer header", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "malformed token", authHeader: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "expired token", authHeader: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "token signed with another secret", authHeader: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{name: "token for deleted user", authHeader: "Bearer " + deletedUserToken, wantStatus: http.StatusUnauthorized},
		{name: "valid token", authHeader: "Bearer " + validToken, wantStatus: http.StatusOK, wantBody: "a@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupProtectedRouter(t, &fakeUserStore{user: knownUser}, tokens)

			req := httptest.NewRequest(http.MethodGet, "/api/tasks/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestUserFrom_Empty(t *testing.T) {
	assert.Nil(t, UserFrom(context.Background()))
}
