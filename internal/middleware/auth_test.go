package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	services.UserStore
	users map[string]*models.User
}

func (s *stubStore) FindPublicByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return u.Public(), nil
}

func authFixture(t *testing.T) (*services.TokenService, *stubStore, *services.TokenDenylist) {
	t.Helper()
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  "a",
		AccessTTL:     time.Hour,
		RefreshSecret: "r",
		RefreshTTL:    time.Hour,
		Issuer:        "videotube",
	})
	store := &stubStore{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", Password: "hash", RefreshToken: "rt"},
	}}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return tokens, store, services.NewTokenDenylist(client)
}

func runAuth(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVerifyJWT(t *testing.T) {
	tokens, store, denylist := authFixture(t)

	var gotUser *models.User
	var gotClaims *services.AccessClaims
	h := VerifyJWT(tokens, store, denylist)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	access, err := tokens.GenerateAccessToken(store.users["u1"])
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		gotUser = nil
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: access})
		rec := runAuth(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, "alice", gotUser.Username)
		assert.Empty(t, gotUser.Password)
		assert.Empty(t, gotUser.RefreshToken)
		assert.Equal(t, "u1", gotClaims.Subject)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := runAuth(h, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := runAuth(h, httptest.NewRequest(http.MethodPost, "/logout", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized request")
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := runAuth(h, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid access token")
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost, err := tokens.GenerateAccessToken(&models.User{ID: "ghost"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+ghost)
		rec := runAuth(h, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := tokens.ParseAccessToken(access)
		require.NoError(t, err)
		require.NoError(t, denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: access})
		rec := runAuth(h, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid access token")
	})
}

func TestUserFromEmptyContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
	_, ok = ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
