package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pressroom/app/models"
	"pressroom/app/repositories/mock"
	"pressroom/app/services"
	"pressroom/app/sessions"
)

func newAuthService(t *testing.T) (*services.AuthService, *models.User, string) {
	t.Helper()
	store := mock.NewStore()

	sessionStore, err := sessions.NewStore("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { sessionStore.Close() })

	auth := services.NewAuthService(store.Users(), sessionStore)
	user, err := auth.Register("alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)
	_, token, err := auth.Login("alice", "sup3rsecret")
	require.NoError(t, err)

	return auth, user, token
}

func TestAuthenticateResolvesCookie(t *testing.T) {
	auth, user, token := newAuthService(t)

	var seen *models.User
	handler := Authenticate(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestAuthenticatePassesAnonymousThrough(t *testing.T) {
	auth, _, _ := newAuthService(t)

	var seen *models.User
	called := false
	handler := Authenticate(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = CurrentUser(r)
	}))

	// No cookie at all.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, called)
	assert.Nil(t, seen)

	// A stale token behaves the same.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "deadbeef"})
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Nil(t, seen)
}

func TestRequireAuth(t *testing.T) {
	called := false
	handler := RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	r := httptest.NewRequest(http.MethodGet, "/posts/create/", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login/", w.Header().Get("Location"))

	r = WithUser(httptest.NewRequest(http.MethodGet, "/posts/create/", nil), &models.User{ID: 1})
	handler(httptest.NewRecorder(), r)
	assert.True(t, called)
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoggerRecordsStatus(t *testing.T) {
	handler := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}
