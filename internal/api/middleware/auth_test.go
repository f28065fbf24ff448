// Covers: token absent, invalid, expired, valid, optional auth, and context injection.
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/matiasleandrokruk/arcana/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/arcana/internal/api/middleware"
	pkgauth "github.com/matiasleandrokruk/arcana/pkg/auth"
)

const testSecret = "test-secret-key-32-chars-min!!!"

// ===== HELPERS =====

func newIssuer(t *testing.T) *pkgauth.Issuer {
	t.Helper()
	issuer, err := pkgauth.NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer error = %v", err)
	}
	return issuer
}

// nextHandler returns an http.Handler that sets called=true and records the context.
func nextHandler(called *bool, capturedCtx *context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if capturedCtx != nil {
			*capturedCtx = r.Context()
		}
		w.WriteHeader(http.StatusOK)
	})
}

// makeRequest creates a GET request with an optional bearer token.
func makeRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/readings", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// buildExpiredToken signs a token with the shared secret whose exp is already in the past.
func buildExpiredToken(t *testing.T, userID string) string {
	t.Helper()

	now := time.Now()
	claims := &pkgauth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			NotBefore: jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("buildExpiredToken: failed to sign: %v", err)
	}
	return signed
}

// ===== REQUIRE AUTH: REJECTIONS =====

func TestRequireAuth_Rejections(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t)
	valid, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	cases := map[string]string{
		"no header":    "",
		"empty bearer": "Bearer ",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"garbage":      "Bearer not.a.real.jwt",
		"tampered":     "Bearer " + valid[:len(valid)-10] + "TAMPERED!!",
		"expired":      "Bearer " + buildExpiredToken(t, "user-1"),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			called := false
			handler := middleware.RequireAuth(issuer)(nextHandler(&called, nil))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/readings", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d; want %d", rr.Code, http.StatusUnauthorized)
			}
			if called {
				t.Error("next handler should NOT be called")
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q; want application/json", ct)
			}
		})
	}
}

// ===== REQUIRE AUTH: VALID TOKEN =====

func TestRequireAuth_InjectsUserIDInContext(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t)
	token, err := issuer.Generate("user-abc-123")
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	var capturedCtx context.Context
	called := false
	handler := middleware.RequireAuth(issuer)(nextHandler(&called, &capturedCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest(token))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusOK)
	}
	if !called {
		t.Fatal("next handler was not called")
	}
	if got := ctxkeys.UserIDFrom(capturedCtx); got != "user-abc-123" {
		t.Errorf("context UserID = %q; want %q", got, "user-abc-123")
	}
}

func TestRequireAuth_TokenFromOtherSecretRejected(t *testing.T) {
	t.Parallel()

	other, err := pkgauth.NewIssuer("another-secret-of-enough-length", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer error = %v", err)
	}
	token, _ := other.Generate("user-1")

	called := false
	handler := middleware.RequireAuth(newIssuer(t))(nextHandler(&called, nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest(token))

	if rr.Code != http.StatusUnauthorized || called {
		t.Errorf("status = %d, called = %v; want 401 and not called", rr.Code, called)
	}
}

// ===== OPTIONAL AUTH =====

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	t.Parallel()

	var capturedCtx context.Context
	called := false
	handler := middleware.OptionalAuth(newIssuer(t))(nextHandler(&called, &capturedCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest(""))

	if !called || rr.Code != http.StatusOK {
		t.Fatalf("status = %d, called = %v; want 200 and called", rr.Code, called)
	}
	if got := ctxkeys.UserIDFrom(capturedCtx); got != "" {
		t.Errorf("context UserID = %q; want empty for anonymous request", got)
	}
}

func TestOptionalAuth_ValidTokenInjectsUser(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t)
	token, _ := issuer.Generate("user-opt")

	var capturedCtx context.Context
	called := false
	handler := middleware.OptionalAuth(issuer)(nextHandler(&called, &capturedCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest(token))

	if !called {
		t.Fatal("next handler was not called")
	}
	if got := ctxkeys.UserIDFrom(capturedCtx); got != "user-opt" {
		t.Errorf("context UserID = %q; want user-opt", got)
	}
}

func TestOptionalAuth_InvalidTokenRejected(t *testing.T) {
	t.Parallel()

	called := false
	handler := middleware.OptionalAuth(newIssuer(t))(nextHandler(&called, nil))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest("not.a.real.jwt"))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler should NOT be called for a bad token on an optional route")
	}
}
