package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coaster_catalog/internal/app/service"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/testfixtures"
)

type routerFixture struct {
	handler     http.Handler
	userRepo    *testfixtures.UserRepository
	coasterRepo *testfixtures.CoasterRepository
	editRepo    *testfixtures.EditRepository
}

func newRouterFixture() *routerFixture {
	userRepo := testfixtures.NewUserRepository()
	coasterRepo := testfixtures.NewCoasterRepository()
	editRepo := testfixtures.NewEditRepository()
	audit := service.NewAuditService(editRepo)
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)

	authService := service.NewAuthService(userRepo, testfixtures.NewRoleRepository(), audit, tokens, testfixtures.NewLoginLimiter(10))
	userService := service.NewUserService(userRepo, audit)
	coasterService := service.NewCoasterService(coasterRepo, audit)

	return &routerFixture{
		handler:     NewRouter(tokens, authService, userService, coasterService),
		userRepo:    userRepo,
		coasterRepo: coasterRepo,
		editRepo:    editRepo,
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func registerPayload(email, role string) map[string]interface{} {
	return map[string]interface{}{
		"email":      email,
		"password":   "superSecret1",
		"fullName":   "Rita Rider",
		"givenName":  "Rita",
		"familyName": "Rider",
		"role":       role,
	}
}

// register signs a user up and returns the session cookie the server set.
func (f *routerFixture) register(t *testing.T, email, role string) *http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/users/register", registerPayload(email, role), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.AuthCookieName {
			return c
		}
	}
	t.Fatalf("registration did not set the %s cookie", security.AuthCookieName)
	return nil
}

func TestHealth(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	f := newRouterFixture()

	cookie := f.register(t, "rider@example.com", "Ride Operator")
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if cookie.Value == "" {
		t.Fatal("session cookie must carry the token")
	}
	if f.userRepo.Count() != 1 {
		t.Fatalf("expected one stored user, got %d", f.userRepo.Count())
	}
}

func TestRegisterMissingFieldsLists400Details(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(t, http.MethodPost, "/api/users/register", map[string]interface{}{
		"email": "rider@example.com",
		"role":  "Guest",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Details) != 4 {
		t.Fatalf("expected 4 field violations, got %v", resp.Details)
	}
	if f.userRepo.Count() != 0 {
		t.Fatal("invalid registration must not persist a user")
	}
}

func TestRegisterDuplicateEmailIs400(t *testing.T) {
	f := newRouterFixture()
	f.register(t, "rider@example.com", "Guest")

	rec := f.do(t, http.MethodPost, "/api/users/register", registerPayload("rider@example.com", "Guest"), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}
}

func TestLoginWrongPasswordIs400(t *testing.T) {
	f := newRouterFixture()
	f.register(t, "rider@example.com", "Guest")

	rec := f.do(t, http.MethodPost, "/api/users/login", map[string]interface{}{
		"email":    "rider@example.com",
		"password": "wrongPassword",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	f := newRouterFixture()

	for _, path := range []string{"/api/users/me", "/api/users/list"} {
		rec := f.do(t, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "You must be logged in") {
			t.Errorf("%s: unexpected body %s", path, rec.Body.String())
		}
	}
	// Rejection happens before any data access.
	if len(f.userRepo.Pipelines) != 0 {
		t.Fatalf("anonymous request must not reach the store, pipelines=%d", len(f.userRepo.Pipelines))
	}
}

func TestGarbageCookieIsRejected(t *testing.T) {
	f := newRouterFixture()

	cookie := &http.Cookie{Name: security.AuthCookieName, Value: "not-a-jwt"}
	rec := f.do(t, http.MethodGet, "/api/users/me", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a forged cookie, got %d", rec.Code)
	}
}

func TestMeReturnsCurrentUser(t *testing.T) {
	f := newRouterFixture()
	cookie := f.register(t, "rider@example.com", "Guest")

	rec := f.do(t, http.MethodGet, "/api/users/me", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	var me struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Email != "rider@example.com" {
		t.Fatalf("unexpected identity %q", me.Email)
	}
	if strings.Contains(rec.Body.String(), "superSecret1") {
		t.Fatal("response must not leak the password")
	}
}

func TestUserListPermissionGate(t *testing.T) {
	f := newRouterFixture()
	guest := f.register(t, "guest@example.com", "Guest")
	operator := f.register(t, "operator@example.com", "Ride Operator")

	rec := f.do(t, http.MethodGet, "/api/users/list", nil, guest)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("guest list: expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "You do not have permission to do that") {
		t.Fatalf("unexpected 403 body: %s", rec.Body.String())
	}
	if len(f.userRepo.Pipelines) != 0 {
		t.Fatal("denied request must not reach the store")
	}

	rec = f.do(t, http.MethodGet, "/api/users/list?sortBy=newest&pageSize=2", nil, operator)
	if rec.Code != http.StatusOK {
		t.Fatalf("operator list: %d %s", rec.Code, rec.Body.String())
	}
	if len(f.userRepo.Pipelines) != 1 {
		t.Fatalf("expected one aggregation, got %d", len(f.userRepo.Pipelines))
	}
}

func TestAdminUpdateRequiresEditPermission(t *testing.T) {
	f := newRouterFixture()
	operator := f.register(t, "operator@example.com", "Ride Operator")
	supervisor := f.register(t, "boss@example.com", "Maintenance Supervisor")

	target, err := f.userRepo.FindByEmail(context.Background(), "operator@example.com")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	body := map[string]interface{}{"role": "Maintenance Supervisor"}
	path := fmt.Sprintf("/api/users/update/%s", target.ID.Hex())

	rec := f.do(t, http.MethodPut, path, body, operator)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("operator admin-update: expected 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPut, path, body, supervisor)
	if rec.Code != http.StatusOK {
		t.Fatalf("supervisor admin-update: %d %s", rec.Code, rec.Body.String())
	}

	updated, _ := f.userRepo.FindByEmail(context.Background(), "operator@example.com")
	if updated.Role != "Maintenance Supervisor" {
		t.Fatalf("role not updated: %q", updated.Role)
	}
	if updated.LastUpdatedBy != "boss@example.com" {
		t.Fatalf("admin edit must be stamped, got %q", updated.LastUpdatedBy)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newRouterFixture()
	f.register(t, "victim@example.com", "Guest")
	supervisor := f.register(t, "boss@example.com", "Maintenance Supervisor")

	target, _ := f.userRepo.FindByEmail(context.Background(), "victim@example.com")
	rec := f.do(t, http.MethodDelete, "/api/users/"+target.ID.Hex(), nil, supervisor)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if _, err := f.userRepo.FindByEmail(context.Background(), "victim@example.com"); err == nil {
		t.Fatal("user should be gone")
	}
}

func TestUpdateSelf(t *testing.T) {
	f := newRouterFixture()
	cookie := f.register(t, "rider@example.com", "Guest")

	rec := f.do(t, http.MethodPut, "/api/users/update/me", map[string]interface{}{"fullName": "Rita T. Rider"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update self: %d %s", rec.Code, rec.Body.String())
	}

	updated, _ := f.userRepo.FindByEmail(context.Background(), "rider@example.com")
	if updated.FullName != "Rita T. Rider" {
		t.Fatalf("fullName not updated: %q", updated.FullName)
	}
}

func TestCoasterListIsPublic(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(t, http.MethodGet, "/api/coasters/list?sortBy=speed", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public coaster list: %d %s", rec.Code, rec.Body.String())
	}
	if len(f.coasterRepo.Pipelines) != 1 {
		t.Fatalf("expected one aggregation, got %d", len(f.coasterRepo.Pipelines))
	}
}

func TestCoasterCreatePermissionGate(t *testing.T) {
	f := newRouterFixture()
	operator := f.register(t, "operator@example.com", "Ride Operator")
	supervisor := f.register(t, "boss@example.com", "Maintenance Supervisor")

	body := map[string]interface{}{
		"name":         "Steel Vengeance",
		"park":         "Cedar Point",
		"openingYear":  2018,
		"manufacturer": "Rocky Mountain Construction",
		"status":       "Operating",
		"length":       "5740 ft",
		"height":       "205 ft",
		"drop":         "200 ft",
		"speed":        "74 mph",
		"inversions":   4,
	}

	rec := f.do(t, http.MethodPost, "/api/coasters/new", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/coasters/new", body, operator)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("operator create: expected 403, got %d", rec.Code)
	}
	if f.coasterRepo.Count() != 0 {
		t.Fatal("denied create must not persist")
	}

	rec = f.do(t, http.MethodPost, "/api/coasters/new", body, supervisor)
	if rec.Code != http.StatusOK {
		t.Fatalf("supervisor create: %d %s", rec.Code, rec.Body.String())
	}
	if f.coasterRepo.Count() != 1 {
		t.Fatalf("expected one stored coaster, got %d", f.coasterRepo.Count())
	}
}
