// Wiring test for NewRouter: real SQLite, real services, a model that is always down.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainauth "github.com/matiasleandrokruk/arcana/internal/domain/auth"
	"github.com/matiasleandrokruk/arcana/internal/domain/journal"
	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/eventbus"
	"github.com/matiasleandrokruk/arcana/internal/infra/llm"
	"github.com/matiasleandrokruk/arcana/internal/infra/sqlite"
	pkgauth "github.com/matiasleandrokruk/arcana/pkg/auth"
)

type unreachableModel struct{}

func (unreachableModel) Generate(context.Context, string) (*llm.ChatResponse, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type testServer struct {
	router  http.Handler
	journal *journal.Journal
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := pkgauth.NewIssuer("test-secret-key-32-chars-min!!!", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	catalog, err := tarot.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	bus := eventbus.New()
	j := journal.New(db, logger)
	done := j.Start(ctx, bus)
	t.Cleanup(func() {
		cancel()
		<-done
		db.Close()
	})

	router := NewRouter(Deps{
		Readings: reading.NewService(unreachableModel{}, bus, logger),
		Journal:  j,
		Auth:     domainauth.NewService(db, issuer, logger),
		Tokens:   issuer,
		Catalog:  catalog,
		Logger:   logger,
	})
	return testServer{router: router, journal: j}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

var readingBody = map[string]any{
	"cards":               []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}},
	"spread":              map[string]any{"id": "three-card"},
	"userPrompt":          "Where is my career heading?",
	"interpretationStyle": "psychological",
}

func TestNewRouter_HealthEndpoint(t *testing.T) {
	t.Parallel()

	rr := newTestServer(t).do(t, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ok") {
		t.Errorf("expected body to contain 'ok', got %q", rr.Body.String())
	}
}

func TestNewRouter_CatalogIsPublic(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	for _, path := range []string{"/api/v1/catalog/spreads", "/api/v1/catalog/styles", "/api/v1/catalog/cards"} {
		if rr := srv.do(t, http.MethodGet, path, "", nil); rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d; want 200", path, rr.Code)
		}
	}
}

func TestNewRouter_ListReadingsRequiresToken(t *testing.T) {
	t.Parallel()

	rr := newTestServer(t).do(t, http.MethodGet, "/api/v1/readings", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated list, got %d", rr.Code)
	}
}

func TestNewRouter_AnonymousLegacyGenerate(t *testing.T) {
	t.Parallel()

	rr := newTestServer(t).do(t, http.MethodPost, "/api/generate-reading", "", readingBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("POST /api/generate-reading = %d; want 200. body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		OK     bool   `json:"ok"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Source != string(reading.SourceFallback) {
		t.Errorf("response = %+v; want ok fallback", resp)
	}
}

// TestNewRouter_RegisterGenerateAndList walks the whole authenticated flow:
// register, generate a reading, then find it in the caller's journal.
func TestNewRouter_RegisterGenerateAndList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "seer@example.com", "password": "crystal-ball-42",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register = %d; want 201. body: %s", rr.Code, rr.Body.String())
	}
	var auth struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&auth); err != nil {
		t.Fatalf("decode register: %v", err)
	}

	rr = srv.do(t, http.MethodPost, "/api/v1/readings", auth.Token, readingBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate = %d; want 200. body: %s", rr.Code, rr.Body.String())
	}
	var gen struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&gen); err != nil {
		t.Fatalf("decode generate: %v", err)
	}

	// The journal records asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := srv.journal.ListByOwner(context.Background(), auth.UserID, 10, 0)
		if err != nil {
			t.Fatalf("ListByOwner: %v", err)
		}
		if len(entries) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reading %s was not journaled", gen.ID)
		}
		time.Sleep(10 * time.Millisecond)
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/readings", auth.Token, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), gen.ID) {
		t.Errorf("list = %d %s; want 200 containing %s", rr.Code, rr.Body.String(), gen.ID)
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/readings/"+gen.ID, auth.Token, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("get own reading = %d; want 200", rr.Code)
	}
	rr = srv.do(t, http.MethodGet, "/api/v1/readings/"+gen.ID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get owned reading anonymously = %d; want 404", rr.Code)
	}
}
