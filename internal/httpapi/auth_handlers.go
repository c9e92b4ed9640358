package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"aslaw.org/internal/audit"
	"aslaw.org/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// One indistinguishable answer for bad credentials, unknown users and
		// disabled/suspended accounts, so the endpoint cannot be used to probe.
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials),
			errors.Is(err, auth.ErrAccountDisabled),
			errors.Is(err, auth.ErrAccountInactive):
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			handleAccessError(w, r, err)
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"username":   strings.TrimSpace(req.Username),
		"role":       result.Role,
		"expires_at": result.ExpiresAt,
	})
	writeJSON(w, http.StatusOK, result)
}

type meResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
	PrimaryRole string   `json:"primary_role"`
}

// handleMe reflects the caller's token back as a principal. It reads claims
// only; it does not consult the identity store.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	if err := a.authz.Authorize(r.Context(), p, auth.OpProfileRead, ""); err != nil {
		handleAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Username:    p.Username,
		Authorities: p.Authorities,
		PrimaryRole: p.PrimaryRole,
	})
}
