package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"aslaw.org/internal/auth"
)

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "mehmet")
	if token == "" {
		t.Fatal("expected a token")
	}

	rr := env.do(t, http.MethodGet, "/v1/me", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", rr.Code, rr.Body.String())
	}
	var me meResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "mehmet" || me.PrimaryRole != "LAWYER" {
		t.Fatalf("unexpected principal: %+v", me)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/v1/auth/login", "",
		loginRequest{Username: "mehmet", Password: "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	known := env.do(t, http.MethodPost, "/v1/auth/login", "",
		loginRequest{Username: "mehmet", Password: "wrong"})
	unknown := env.do(t, http.MethodPost, "/v1/auth/login", "",
		loginRequest{Username: "ghost", Password: "wrong"})
	if known.Code != unknown.Code {
		t.Fatalf("status leaked existence: %d vs %d", known.Code, unknown.Code)
	}
	var a, b map[string]any
	_ = json.Unmarshal(known.Body.Bytes(), &a)
	_ = json.Unmarshal(unknown.Body.Bytes(), &b)
	if a["error"] != b["error"] {
		t.Fatalf("body leaked existence: %v vs %v", a["error"], b["error"])
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	env.store.identities["ayse"].Enabled = false
	rr := env.do(t, http.MethodPost, "/v1/auth/login", "",
		loginRequest{Username: "ayse", Password: testPassword})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled account, got %d", rr.Code)
	}
}

func TestCaseListStaffOnly(t *testing.T) {
	env := newTestEnv(t)

	staff := env.do(t, http.MethodGet, "/v1/cases", env.login(t, "mehmet"), nil)
	if staff.Code != http.StatusOK {
		t.Fatalf("lawyer list: status %d", staff.Code)
	}
	var resp listCasesResponse
	if err := json.Unmarshal(staff.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected full docket, got %d cases", len(resp.Items))
	}

	client := env.do(t, http.MethodGet, "/v1/cases", env.login(t, "ayse"), nil)
	if client.Code != http.StatusForbidden {
		t.Fatalf("client list: expected 403, got %d", client.Code)
	}
}

func TestCaseListMine(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/v1/cases/mine", env.login(t, "ayse"), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("mine: status %d body %s", rr.Code, rr.Body.String())
	}
	var resp listCasesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode mine: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ClientUsername != "ayse" {
		t.Fatalf("expected only ayse's case, got %+v", resp.Items)
	}
}

func TestCaseReadOwnership(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ayse")

	if rr := env.do(t, http.MethodGet, "/v1/cases/case-1", token, nil); rr.Code != http.StatusOK {
		t.Fatalf("own case: status %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/v1/cases/case-2", token, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("foreign case: expected 403, got %d", rr.Code)
	}
	// Missing resources answer 404 even for a client-tier caller.
	if rr := env.do(t, http.MethodGet, "/v1/cases/case-404", token, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("missing case: expected 404, got %d", rr.Code)
	}
}

func TestCaseReadStaffBypassesOwnership(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "mehmet")
	for _, id := range []string{"case-1", "case-2"} {
		if rr := env.do(t, http.MethodGet, "/v1/cases/"+id, token, nil); rr.Code != http.StatusOK {
			t.Fatalf("lawyer read %s: status %d", id, rr.Code)
		}
	}
}

func TestDocumentOwnershipThroughCase(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodGet, "/v1/documents/doc-1", env.login(t, "ayse"), nil); rr.Code != http.StatusOK {
		t.Fatalf("owner document read: status %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/v1/documents/doc-1", env.login(t, "mehmet"), nil); rr.Code != http.StatusOK {
		t.Fatalf("staff document read: status %d", rr.Code)
	}
}

func TestCaseDeleteAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodDelete, "/v1/cases/case-1", env.login(t, "mehmet"), nil); rr.Code != http.StatusForbidden {
		t.Fatalf("lawyer delete: expected 403, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodDelete, "/v1/cases/case-1", env.login(t, "root"), nil); rr.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", rr.Code)
	}
	if len(env.docket.deleted) != 1 || env.docket.deleted[0] != "case-1" {
		t.Fatalf("unexpected deletions: %v", env.docket.deleted)
	}
}

func TestAdminStatusUpdate(t *testing.T) {
	env := newTestEnv(t)
	enabled := false

	rr := env.do(t, http.MethodPost, "/v1/admin/users/ayse/status", env.login(t, "root"),
		statusRequest{Enabled: &enabled})
	if rr.Code != http.StatusOK {
		t.Fatalf("status update: %d body %s", rr.Code, rr.Body.String())
	}
	if env.store.identities["ayse"].Enabled {
		t.Fatal("account should be disabled")
	}

	// Non-admin staff may not manage users.
	rr = env.do(t, http.MethodPost, "/v1/admin/users/ayse/status", env.login(t, "mehmet"),
		statusRequest{Enabled: &enabled})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("lawyer managing users: expected 403, got %d", rr.Code)
	}
}

func TestAdminAssignLawRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "root")

	// mehmet is a MANAGER, so PARTNER is assignable.
	rr := env.do(t, http.MethodPost, "/v1/admin/users/mehmet/law-roles", admin,
		lawRoleRequest{Role: "PARTNER"})
	if rr.Code != http.StatusOK {
		t.Fatalf("assign partner: %d body %s", rr.Code, rr.Body.String())
	}

	// ayse is a USER; CLERK needs EMPLOYEE.
	rr = env.do(t, http.MethodPost, "/v1/admin/users/ayse/law-roles", admin,
		lawRoleRequest{Role: "CLERK"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("prerequisite violation: expected 409, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/v1/admin/users/mehmet/law-roles", admin,
		lawRoleRequest{Role: "JUDGE"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", rr.Code)
	}
}

func TestAdminChangePassword(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/v1/admin/users/ayse/password", env.login(t, "root"),
		passwordRequest{Password: "yeni-sifre"})
	if rr.Code != http.StatusOK {
		t.Fatalf("change password: %d body %s", rr.Code, rr.Body.String())
	}

	hash := env.store.identities["ayse"].PasswordHash
	if err := auth.VerifyPassword(hash, "yeni-sifre"); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}
}

func TestTokenSurvivesStatusChange(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ayse")

	enabled := false
	rr := env.do(t, http.MethodPost, "/v1/admin/users/ayse/status", env.login(t, "root"),
		statusRequest{Enabled: &enabled})
	if rr.Code != http.StatusOK {
		t.Fatalf("disable account: %d", rr.Code)
	}

	// The outstanding token keeps working until it expires: validation is
	// stateless and never re-reads the account.
	if rr := env.do(t, http.MethodGet, "/v1/cases/mine", token, nil); rr.Code != http.StatusOK {
		t.Fatalf("stale token should still pass: %d", rr.Code)
	}
	// A fresh login is refused.
	login := env.do(t, http.MethodPost, "/v1/auth/login", "",
		loginRequest{Username: "ayse", Password: testPassword})
	if login.Code != http.StatusUnauthorized {
		t.Fatalf("disabled login: expected 401, got %d", login.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz", "/v1/info"} {
		if rr := env.do(t, http.MethodGet, path, "", nil); rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rr.Code)
		}
	}
}
