// Bearer JWT middleware.
// Reads Authorization: Bearer <token>, validates it and injects user_id into the context.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/arcana/internal/api/ctxkeys"
	pkgauth "github.com/matiasleandrokruk/arcana/pkg/auth"
)

// TokenParser validates a bearer token. *pkgauth.Issuer satisfies it.
type TokenParser interface {
	Parse(token string) (*pkgauth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token.
//
// Flow:
//  1. Read "Authorization: Bearer <token>" header
//  2. Reject if missing or not Bearer scheme → 401
//  3. Parse + validate JWT → 401 on invalid/expired
//  4. Inject ctxkeys.UserID into context
//  5. Call next handler
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}
			authenticate(tokens, tokenString, next, w, r)
		})
	}
}

// OptionalAuth lets anonymous requests through untouched. A request that does send
// an Authorization header must carry a valid token, otherwise it gets 401.
func OptionalAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}
			authenticate(tokens, tokenString, next, w, r)
		})
	}
}

func authenticate(tokens TokenParser, tokenString string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	claims, err := tokens.Parse(tokenString)
	if err != nil {
		writeUnauthorized(w, "invalid or expired token")
		return
	}
	ctx := ctxkeys.WithValue(r.Context(), ctxkeys.UserID, claims.UserID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if header is missing, wrong scheme, or token is empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeUnauthorized writes a 401 JSON response in the same shape as handlers.writeError.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
