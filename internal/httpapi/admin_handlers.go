package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"aslaw.org/internal/audit"
	"aslaw.org/internal/auth"
)

type statusRequest struct {
	Enabled *bool `json:"enabled"`
	Active  *bool `json:"active"`
}

type lawRoleRequest struct {
	Role string `json:"role"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// /v1/admin/users/{username}/{action}
func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	username, action := parts[0], parts[1]

	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	if err := a.authz.Authorize(r.Context(), p, auth.OpUserManage, ""); err != nil {
		handleAccessError(w, r, err)
		return
	}

	switch action {
	case "status":
		a.setUserStatus(w, r, username)
	case "law-roles":
		a.assignLawRole(w, r, username)
	case "password":
		a.changePassword(w, r, username)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) setUserStatus(w http.ResponseWriter, r *http.Request, username string) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	upd := auth.StatusUpdate{Enabled: req.Enabled, Active: req.Active}
	if err := a.auth.SetUserStatus(r.Context(), username, upd); err != nil {
		handleAdminError(w, r, err)
		return
	}

	fields := map[string]any{"username": username}
	if req.Enabled != nil {
		fields["enabled"] = *req.Enabled
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	_ = audit.LogEvent(r.Context(), "user.status.updated", fields)
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (a *API) assignLawRole(w http.ResponseWriter, r *http.Request, username string) {
	var req lawRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	role, ok := auth.ParseLawRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "unknown professional role")
		return
	}

	if err := a.auth.AssignLawRole(r.Context(), username, role); err != nil {
		handleAdminError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.law_role.assigned", map[string]any{
		"username": username,
		"role":     string(role),
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "assigned", "role": string(role)})
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request, username string) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.auth.ChangePassword(r.Context(), username, req.Password); err != nil {
		handleAdminError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.password.changed", map[string]any{"username": username})
	writeJSON(w, http.StatusOK, map[string]any{"status": "changed"})
}

func handleAdminError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrRolePrerequisite):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	default:
		handleAccessError(w, r, err)
	}
}
