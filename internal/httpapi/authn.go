package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"aslaw.org/internal/auth"
	"aslaw.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth validates the bearer token when one is presented. A request without
// an Authorization header proceeds anonymously; the authorizer rejects it later
// if the endpoint needs an authenticated caller. A present-but-invalid token is
// refused outright with a deliberately generic message.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get(authHeader))
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		principal, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			reason := "malformed"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				reason = "expired"
			case errors.Is(err, auth.ErrTokenSignature):
				reason = "bad_signature"
			}
			obs.Log("warn", "token_rejected", map[string]any{
				"request_id": RequestIDFromContext(r.Context()),
				"reason":     reason,
			})
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearer) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
