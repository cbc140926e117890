package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

// AuthValidator resolves the caller from an optional bearer token. Requests without an
// Authorization header continue anonymously; a present but invalid token is rejected with 401.
type AuthValidator struct {
	verifier ports.TokenVerifier
	log      zerolog.Logger
}

func NewAuthValidator(verifier ports.TokenVerifier, log zerolog.Logger) *AuthValidator {
	return &AuthValidator{verifier: verifier, log: log}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
			return
		}
		userID, err := m.verifier.ValidateAccessToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			m.log.Debug().Err(err).Msg("rejected access token")
			writeErr(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
