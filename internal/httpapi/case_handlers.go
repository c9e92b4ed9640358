package httpapi

import (
	"net/http"
	"strings"
	"time"

	"aslaw.org/internal/audit"
	"aslaw.org/internal/auth"
	"aslaw.org/internal/docket"
)

type listCasesResponse struct {
	Items []docket.Case `json:"items"`
	AsOf  time.Time     `json:"as_of"`
}

// GET /v1/cases — the full docket, staff only.
func (a *API) handleCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	if err := a.authz.Authorize(r.Context(), p, auth.OpCaseList, ""); err != nil {
		handleAccessError(w, r, err)
		return
	}

	items, err := a.docket.ListCases(r.Context())
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listCasesResponse{Items: items, AsOf: time.Now().UTC()})
}

// GET /v1/cases/mine — the caller's own cases, client tier.
func (a *API) handleMyCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	if err := a.authz.Authorize(r.Context(), p, auth.OpCaseListOwn, ""); err != nil {
		handleAccessError(w, r, err)
		return
	}

	items, err := a.docket.ListCasesByClient(r.Context(), p.Username)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listCasesResponse{Items: items, AsOf: time.Now().UTC()})
}

// /v1/cases/{id}
func (a *API) handleCaseResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/cases/")
	if id == "" || id == "mine" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		if err := a.authz.Authorize(r.Context(), p, auth.OpCaseRead, id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		c, err := a.docket.FindCase(r.Context(), id)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodDelete:
		if err := a.authz.Authorize(r.Context(), p, auth.OpCaseDelete, id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		if err := a.docket.DeleteCase(r.Context(), id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "case.deleted", map[string]any{"case_id": id})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

// /v1/documents/{id}
func (a *API) handleDocumentResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		if err := a.authz.Authorize(r.Context(), p, auth.OpDocumentRead, id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		d, err := a.docket.FindDocument(r.Context(), id)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)

	case http.MethodDelete:
		if err := a.authz.Authorize(r.Context(), p, auth.OpDocumentDelete, id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		if err := a.docket.DeleteDocument(r.Context(), id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "document.deleted", map[string]any{"document_id": id})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}
