package middleware

import (
	"context"
	"net/http"
	"strings"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type userKey struct{}

// Identity reads the caller set by the upstream gateway from X-User-ID and
// X-User-Roles (comma separated role ids). Requests without X-User-ID are
// treated as guests.
func Identity(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(rawID)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("invalid user id header")
				writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid X-User-ID header")
				return
			}

			user := &model.User{ID: id}
			for _, raw := range strings.Split(r.Header.Get("X-User-Roles"), ",") {
				raw = strings.TrimSpace(raw)
				if raw == "" {
					continue
				}
				role, err := uuid.Parse(raw)
				if err != nil {
					logger.Warn().Str("path", r.URL.Path).Str("role", raw).Msg("invalid role header")
					writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid X-User-Roles header")
					return
				}
				user.RoleIDs = append(user.RoleIDs, role)
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the caller, or nil for guests.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey{}).(*model.User)
	return user
}
