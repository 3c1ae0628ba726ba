// Package auth provides bearer-token authentication for the caixa ledger.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

// AuthorizationHeader is the header carrying the bearer token.
const AuthorizationHeader = "Authorization"

// Authenticator resolves a raw bearer token into the acting user.
// Implementations return ErrUnauthorized for every credential problem and
// other errors only for infrastructure failures.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively. It returns "" when the header is
// absent or uses another scheme.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(AuthorizationHeader))
	if header == "" {
		return ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware creates an authentication middleware. Requests without a valid
// token get 401; the authenticated user is stored in the request context.
func Middleware(authn Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authn.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					logger.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
					writeAuthError(w, http.StatusUnauthorized, "Unauthorized", ErrUnauthorized.Error())
					return
				}
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("authentication backend error")
				writeAuthError(w, http.StatusInternalServerError, "InternalError", "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// writeAuthError writes the JSON error body shared with the API handlers.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
