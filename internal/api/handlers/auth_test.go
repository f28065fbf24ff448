// Tests for the register + login handlers.
// They run against a real in-memory SQLite DB, with no mocking.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/matiasleandrokruk/arcana/internal/domain/auth"
	"github.com/matiasleandrokruk/arcana/internal/infra/sqlite"
	pkgauth "github.com/matiasleandrokruk/arcana/pkg/auth"
)

const testJWTSecret = "test-secret-key-32-chars-min!!!"

// ===== TEST HELPERS (auth-specific) =====

// mustOpenAuthDB opens in-memory SQLite with all migrations applied.
func mustOpenAuthDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite.Open error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustIssuer(t *testing.T) *pkgauth.Issuer {
	t.Helper()
	issuer, err := pkgauth.NewIssuer(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer error = %v", err)
	}
	return issuer
}

// newAuthHandler creates an AuthHandler wired to a real domain service.
func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	return NewAuthHandler(domainauth.NewService(mustOpenAuthDB(t), mustIssuer(t), nil))
}

type registerPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// postRequest builds a POST request with JSON body.
func postRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("json.Marshal error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ===== REGISTER TESTS =====

func TestAuthHandler_Register_Success(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	rr := httptest.NewRecorder()
	h.Register(rr, postRequest(t, "/auth/register", registerPayload{
		Email: "alice@example.com", Password: "SecurePass123!", DisplayName: "Alice",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status = %d; want %d. body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}

	var resp AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response error = %v", err)
	}
	if resp.Token == "" || resp.UserID == "" {
		t.Errorf("response = %+v; want token and userId", resp)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	payload := registerPayload{Email: "dup@example.com", Password: "SecurePass123!"}
	h.Register(httptest.NewRecorder(), postRequest(t, "/auth/register", payload))

	rr := httptest.NewRecorder()
	h.Register(rr, postRequest(t, "/auth/register", payload))

	if rr.Code != http.StatusConflict {
		t.Errorf("Register duplicate status = %d; want %d", rr.Code, http.StatusConflict)
	}
}

func TestAuthHandler_Register_BadInput(t *testing.T) {
	t.Parallel()

	cases := map[string]registerPayload{
		"missing email":    {Password: "SecurePass123!"},
		"missing password": {Email: "eve@example.com"},
		"malformed email":  {Email: "not-an-email", Password: "SecurePass123!"},
		"short password":   {Email: "frank@example.com", Password: "short"},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			newAuthHandler(t).Register(rr, postRequest(t, "/auth/register", payload))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want %d. body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
		})
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("not-json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newAuthHandler(t).Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register invalid JSON status = %d; want %d", rr.Code, http.StatusBadRequest)
	}
}

// ===== LOGIN TESTS =====

func TestAuthHandler_Login_Success(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	h.Register(httptest.NewRecorder(), postRequest(t, "/auth/register", registerPayload{
		Email: "grace@example.com", Password: "SecurePass123!",
	}))

	rr := httptest.NewRecorder()
	h.Login(rr, postRequest(t, "/auth/login", loginPayload{Email: "grace@example.com", Password: "SecurePass123!"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status = %d; want %d. body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response error = %v", err)
	}
	claims, err := mustIssuer(t).Parse(resp.Token)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != resp.UserID {
		t.Errorf("token user = %q; want %q", claims.UserID, resp.UserID)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	h.Register(httptest.NewRecorder(), postRequest(t, "/auth/register", registerPayload{
		Email: "ivan@example.com", Password: "SecurePass123!",
	}))

	cases := map[string]loginPayload{
		"wrong password": {Email: "ivan@example.com", Password: "WrongPassword!"},
		"unknown email":  {Email: "nobody@example.com", Password: "SomePass!"},
	}
	for name, payload := range cases {
		rr := httptest.NewRecorder()
		h.Login(rr, postRequest(t, "/auth/login", payload))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d; want %d", name, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(t)
	for _, payload := range []loginPayload{{Password: "x"}, {Email: "a@example.com"}} {
		rr := httptest.NewRecorder()
		h.Login(rr, postRequest(t, "/auth/login", payload))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Login(%+v) status = %d; want %d", payload, rr.Code, http.StatusBadRequest)
		}
	}
}
