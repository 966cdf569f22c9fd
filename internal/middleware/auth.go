package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

// AccessTokenCookie is the cookie holding the access token
const AccessTokenCookie = "accessToken"

type userKey struct{}
type claimsKey struct{}

// UserFromContext returns the authenticated user attached by VerifyJWT
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// ClaimsFromContext returns the access token claims attached by VerifyJWT
func ClaimsFromContext(ctx context.Context) (*services.AccessClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*services.AccessClaims)
	return c, ok && c != nil
}

// WithUser attaches an authenticated user and its claims to ctx
func WithUser(ctx context.Context, user *models.User, claims *services.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, userKey{}, user)
	return context.WithValue(ctx, claimsKey{}, claims)
}

// VerifyJWT authenticates the request from the accessToken cookie or a
// Bearer header. Revocation lookups that fail are treated as not revoked
// so a Redis outage does not sign everyone out.
func VerifyJWT(tokens *services.TokenService, store services.UserStore, denylist *services.TokenDenylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessTokenFromRequest(r)
			if raw == "" {
				utils.WriteError(w, utils.NewAPIError(http.StatusUnauthorized, "Unauthorized request"))
				return
			}

			claims, err := tokens.ParseAccessToken(raw)
			if err != nil {
				utils.WriteError(w, utils.NewAPIError(http.StatusUnauthorized, "Invalid access token"))
				return
			}

			if revoked, err := denylist.IsRevoked(r.Context(), claims.ID); err == nil && revoked {
				utils.WriteError(w, utils.NewAPIError(http.StatusUnauthorized, "Invalid access token"))
				return
			}

			user, err := store.FindPublicByID(r.Context(), claims.Subject)
			if err != nil {
				utils.WriteError(w, utils.NewAPIError(http.StatusUnauthorized, "Invalid access token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, claims)))
		})
	}
}

func accessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
