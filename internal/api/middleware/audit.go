// HTTP audit middleware for reading routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/arcana/internal/api/ctxkeys"
)

// Outcome classifies an audited request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)

const anonymousActor = "anonymous"

// Audit writes one structured "audit" record per request to logger.
// Expected order in router: auth middleware -> Audit -> handlers, so the actor is known.
func Audit(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			actor := ctxkeys.UserIDFrom(r.Context())
			if actor == "" {
				actor = anonymousActor
			}
			action, entityID := actionFromRequest(r.Method, r.URL.Path)
			attrs := []slog.Attr{
				slog.String("actor_id", actor),
				slog.String("action", action),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", recorder.statusCode),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("outcome", string(outcomeFromStatus(recorder.statusCode))),
			}
			if entityID != "" {
				attrs = append(attrs, slog.String("entity_id", entityID))
			}
			logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", attrs...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func outcomeFromStatus(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return OutcomeDenied
	default:
		return OutcomeError
	}
}

// actionFromRequest maps /api/v1/<collection>[/<id>] to an action name such as
// create_reading, list_reading or get_reading.
func actionFromRequest(method, path string) (string, string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "api" || segments[1] != "v1" {
		return strings.ToLower(method) + "_request", ""
	}

	entity := singularEntity(segments[len(segments)-1])
	if entity != "" {
		return actionForCollection(method, entity), ""
	}
	entity = singularEntity(segments[len(segments)-2])
	if entity == "" {
		return strings.ToLower(method) + "_request", ""
	}
	return actionForEntity(method, entity), segments[len(segments)-1]
}

func singularEntity(collection string) string {
	switch collection {
	case "readings":
		return "reading"
	case "spreads":
		return "spread"
	case "styles":
		return "style"
	case "cards":
		return "card"
	}
	return ""
}

func actionForCollection(method, entity string) string {
	switch method {
	case http.MethodPost:
		return "create_" + entity
	case http.MethodGet:
		return "list_" + entity
	}
	return strings.ToLower(method) + "_" + entity
}

func actionForEntity(method, entity string) string {
	switch method {
	case http.MethodGet:
		return "get_" + entity
	case http.MethodDelete:
		return "delete_" + entity
	}
	return strings.ToLower(method) + "_" + entity
}
