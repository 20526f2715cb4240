package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/auth/service"
	commonhttp "github.com/perplexiplay/backend/internal/common/http"
	"github.com/perplexiplay/backend/internal/common/logger"
)

type contextKey string

const userKey contextKey = "auth_user"

const bearerScheme = "bearer"

type identityResolver interface {
	Resolve(ctx context.Context, token string) (domain.User, error)
}

// RequireUser resolves the bearer token and stores the user in the request
// context. Requests without a usable token get 401 with WWW-Authenticate.
func RequireUser(resolver identityResolver, log *logger.Logger) func(http.HandlerFunc) http.HandlerFunc {
	errHandler := commonhttp.NewErrorHandler(log)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "auth_missing_bearer",
				}).Warn("missing or invalid authorization header")
				errHandler.HandleError(w, r, service.ErrUnauthenticated)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				errHandler.HandleError(w, r, err)
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		}
	}
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

func bearerToken(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(raw, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
