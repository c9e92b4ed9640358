package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aslaw.org/internal/auth"
	"aslaw.org/internal/docket"
)

// fakeIdentityStore is an in-memory auth.IdentityStore seeded with one client
// (ayse), one lawyer (mehmet) and one admin (root), password "sifre123" each.
type fakeIdentityStore struct {
	identities map[string]*auth.Identity
	profiles   map[string]*auth.Profile
}

func (f *fakeIdentityStore) FindIdentity(_ context.Context, username string) (*auth.Identity, error) {
	id, ok := f.identities[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *id
	return &cp, nil
}

func (f *fakeIdentityStore) FindProfile(_ context.Context, username string) (*auth.Profile, error) {
	p, ok := f.profiles[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeIdentityStore) UpdateStatus(_ context.Context, username string, upd auth.StatusUpdate) error {
	id, ok := f.identities[username]
	if !ok {
		return auth.ErrNotFound
	}
	if upd.Enabled != nil {
		id.Enabled = *upd.Enabled
	}
	if upd.Active != nil {
		id.Active = *upd.Active
	}
	return nil
}

func (f *fakeIdentityStore) AssignLawRole(_ context.Context, username string, role auth.LawRole) error {
	if _, ok := f.identities[username]; !ok {
		return auth.ErrNotFound
	}
	p, ok := f.profiles[username]
	if !ok {
		p = &auth.Profile{Username: username}
		f.profiles[username] = p
	}
	p.LawRoles = append(p.LawRoles, role)
	return nil
}

func (f *fakeIdentityStore) UpdatePassword(_ context.Context, username, hash string) error {
	id, ok := f.identities[username]
	if !ok {
		return auth.ErrNotFound
	}
	id.PasswordHash = hash
	return nil
}

// fakeDocketStore serves two cases (case-1 owned by ayse, case-2 by fatma) and
// one document attached to case-1.
type fakeDocketStore struct {
	cases     map[string]docket.Case
	documents map[string]docket.Document
	deleted   []string
}

func (f *fakeDocketStore) ListCases(_ context.Context) ([]docket.Case, error) {
	out := make([]docket.Case, 0, len(f.cases))
	for _, c := range f.cases {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeDocketStore) ListCasesByClient(_ context.Context, clientUsername string) ([]docket.Case, error) {
	var out []docket.Case
	for _, c := range f.cases {
		if c.ClientUsername == clientUsername {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeDocketStore) FindCase(_ context.Context, id string) (*docket.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, docket.ErrNotFound
	}
	return &c, nil
}

func (f *fakeDocketStore) DeleteCase(_ context.Context, id string) error {
	if _, ok := f.cases[id]; !ok {
		return docket.ErrNotFound
	}
	delete(f.cases, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocketStore) FindDocument(_ context.Context, id string) (*docket.Document, error) {
	d, ok := f.documents[id]
	if !ok {
		return nil, docket.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDocketStore) DeleteDocument(_ context.Context, id string) error {
	if _, ok := f.documents[id]; !ok {
		return docket.ErrNotFound
	}
	delete(f.documents, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocketStore) CaseOwner(_ context.Context, caseID string) (string, error) {
	c, ok := f.cases[caseID]
	if !ok {
		return "", docket.ErrNotFound
	}
	return c.ClientUsername, nil
}

func (f *fakeDocketStore) DocumentOwner(ctx context.Context, documentID string) (string, error) {
	d, ok := f.documents[documentID]
	if !ok {
		return "", docket.ErrNotFound
	}
	return f.CaseOwner(ctx, d.CaseID)
}

const testPassword = "sifre123"

func seedIdentityStore(t *testing.T) *fakeIdentityStore {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now()
	return &fakeIdentityStore{
		identities: map[string]*auth.Identity{
			"ayse": {
				ID: "01AYSE", Username: "ayse", Email: "ayse@example.com",
				PasswordHash: hash, Enabled: true, Active: true,
				Roles: []auth.OrgRole{auth.OrgUser}, CreatedAt: now, UpdatedAt: now,
			},
			"mehmet": {
				ID: "01MEHMET", Username: "mehmet", Email: "mehmet@example.com",
				PasswordHash: hash, Enabled: true, Active: true,
				Roles: []auth.OrgRole{auth.OrgManager}, CreatedAt: now, UpdatedAt: now,
			},
			"root": {
				ID: "01ROOT", Username: "root", Email: "root@example.com",
				PasswordHash: hash, Enabled: true, Active: true,
				Roles: []auth.OrgRole{auth.OrgAdmin}, CreatedAt: now, UpdatedAt: now,
			},
		},
		profiles: map[string]*auth.Profile{
			"mehmet": {Username: "mehmet", LawRoles: []auth.LawRole{auth.LawLawyer}, BarNumber: "IST-1907"},
		},
	}
}

func seedDocketStore() *fakeDocketStore {
	now := time.Now()
	return &fakeDocketStore{
		cases: map[string]docket.Case{
			"case-1": {ID: "case-1", CaseNumber: "2024/101", Title: "Araç değer kaybı",
				Status: "OPEN", Type: "CAR_DEPRECIATION", ClientUsername: "ayse",
				AssignedTo: "mehmet", FilingDate: now, CreatedAt: now, UpdatedAt: now},
			"case-2": {ID: "case-2", CaseNumber: "2024/102", Title: "Kıdem tazminatı",
				Status: "OPEN", Type: "SEVERANCE", ClientUsername: "fatma",
				FilingDate: now, CreatedAt: now, UpdatedAt: now},
		},
		documents: map[string]docket.Document{
			"doc-1": {ID: "doc-1", CaseID: "case-1", Title: "Ekspertiz raporu",
				FileName: "rapor.pdf", ContentType: "application/pdf", CreatedAt: now},
		},
	}
}

type testEnv struct {
	handler http.Handler
	docket  *fakeDocketStore
	store   *fakeIdentityStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	store := seedIdentityStore(t)
	svc, err := auth.NewService(store, tokens)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	dk := seedDocketStore()
	api := New(svc, dk, ReadyProbe{}, "test")
	return &testEnv{handler: api.Handler(), docket: dk, store: store}
}

// login authenticates through the real endpoint and returns the bearer token.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	body, _ := json.Marshal(loginRequest{Username: username, Password: testPassword})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1000"
	// Spread logins across fake source addresses so the per-IP limiter
	// never throttles test setup.
	req.Header.Set("X-Forwarded-For", "192.0.2."+username)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
	var result auth.LoginResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return result.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.9:1000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// doRawAuth sends the Authorization header verbatim, scheme included.
func (e *testEnv) doRawAuth(t *testing.T, method, path, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.9:1000"
	req.Header.Set("Authorization", header)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}
