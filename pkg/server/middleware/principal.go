package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/de-tools/research-reports/pkg/models/api"
	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// UserIDHeader carries the identity established by the upstream authenticator
const UserIDHeader = "X-User-Id"

type principalKey struct{}

type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string, rootRequested bool) (domain.Principal, error)
}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// Principal rejects requests without an identity and attaches the resolved principal.
// Superuser elevation is requested with ?root=true (or 1).
func Principal(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			logger := zerolog.Ctx(ctx)

			userID := strings.TrimSpace(req.Header.Get(UserIDHeader))
			if userID == "" {
				writeError(w, http.StatusUnauthorized, "missing user identity")
				return
			}

			principal, err := resolver.ResolvePrincipal(ctx, userID, isTrue(req.URL.Query().Get("root")))
			if err != nil {
				logger.Error().Err(err).Str("user", userID).Msg("failed to resolve principal")
				if mongodb.IsUnavailable(err) {
					writeError(w, http.StatusServiceUnavailable, "store unavailable")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user", principal.ID).Bool("superuser", principal.Superuser)
			})
			next.ServeHTTP(w, req.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

func isTrue(v string) bool {
	v = strings.ToLower(v)
	return v == "1" || v == "true"
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Status: status, Message: message})
}
