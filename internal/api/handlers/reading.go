package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/arcana/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/llm"
)

const msgMissingFields = "Missing required fields"

// ReadingService runs the reading pipeline. *reading.Service satisfies it.
type ReadingService interface {
	Generate(ctx context.Context, req tarot.ReadingRequest) (*reading.Result, error)
}

// CatalogLookup resolves spreads and cards sent by reference. *tarot.Catalog satisfies it.
type CatalogLookup interface {
	Spread(id string) (tarot.Spread, error)
	Card(id int) (tarot.Card, error)
}

type ReadingHandler struct {
	readings ReadingService
	catalog  CatalogLookup
}

func NewReadingHandler(readings ReadingService, catalog CatalogLookup) *ReadingHandler {
	return &ReadingHandler{readings: readings, catalog: catalog}
}

// cardInput accepts either a full card or {"id": n, "upright": bool} to be resolved from the catalog.
// A missing "upright" means upright.
type cardInput struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Suit     tarot.Suit     `json:"suit"`
	Type     tarot.CardType `json:"type"`
	Number   int            `json:"number"`
	Keywords []string       `json:"keywords"`
	Upright  *bool          `json:"upright"`
}

type generateReadingRequest struct {
	Cards               []cardInput   `json:"cards"`
	Spread              *tarot.Spread `json:"spread"`
	UserPrompt          string        `json:"userPrompt"`
	InterpretationStyle tarot.Style   `json:"interpretationStyle"`
	APIKey              string        `json:"apiKey,omitempty"`
}

type generateReadingResponse struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message,omitempty"`
	ID      string         `json:"id,omitempty"`
	Source  reading.Source `json:"source,omitempty"`
	Model   string         `json:"model,omitempty"`
	Reading *tarot.Reading `json:"reading,omitempty"`
}

type readingRequestError struct {
	status  int
	message string
}

func (e readingRequestError) Error() string { return e.message }

// Generate handles POST /api/v1/readings and POST /api/generate-reading.
//
// Response codes:
//   - 200 OK: {"ok":true, "id", "source", "reading"}; the reading may come from the fallback
//   - 400 Bad Request: malformed body, missing fields, unknown spread/card/style or no API key
//   - 415 Unsupported Media Type: body is not application/json
//   - 500 Internal Server Error: unexpected failure
func (h *ReadingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := h.buildReadingRequest(r)
	if err != nil {
		writeReadingError(w, err)
		return
	}

	ctx := r.Context()
	if userID := ctxkeys.UserIDFrom(ctx); userID != "" {
		ctx = reading.WithOwner(ctx, userID)
	}

	res, err := h.readings.Generate(ctx, req)
	if err != nil {
		writeReadingError(w, classifyGenerateError(err))
		return
	}

	writeJSON(w, http.StatusOK, generateReadingResponse{
		OK:      true,
		ID:      res.ID,
		Source:  res.Source,
		Model:   res.Model,
		Reading: res.Reading,
	})
}

func (h *ReadingHandler) buildReadingRequest(r *http.Request) (tarot.ReadingRequest, error) {
	if !isJSONContentType(r.Header.Get(headerContentType)) {
		return tarot.ReadingRequest{}, readingRequestError{
			status: http.StatusUnsupportedMediaType, message: "Content-Type must be application/json",
		}
	}

	var body generateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return tarot.ReadingRequest{}, readingRequestError{status: http.StatusBadRequest, message: "invalid request body"}
	}
	if missingRequiredFields(body) {
		return tarot.ReadingRequest{}, readingRequestError{status: http.StatusBadRequest, message: msgMissingFields}
	}

	spread, err := h.resolveSpread(*body.Spread)
	if err != nil {
		return tarot.ReadingRequest{}, err
	}
	cards, err := h.resolveCards(body.Cards)
	if err != nil {
		return tarot.ReadingRequest{}, err
	}

	return tarot.ReadingRequest{
		Cards:               cards,
		Spread:              spread,
		UserPrompt:          body.UserPrompt,
		InterpretationStyle: body.InterpretationStyle,
		APIKey:              strings.TrimSpace(body.APIKey),
	}, nil
}

func missingRequiredFields(body generateReadingRequest) bool {
	return len(body.Cards) == 0 ||
		body.Spread == nil ||
		(body.Spread.ID == "" && len(body.Spread.Positions) == 0) ||
		strings.TrimSpace(body.UserPrompt) == "" ||
		body.InterpretationStyle == ""
}

// resolveSpread returns the spread as sent, or the catalog spread when only an id was given.
func (h *ReadingHandler) resolveSpread(s tarot.Spread) (tarot.Spread, error) {
	if len(s.Positions) > 0 {
		return s, nil
	}
	spread, err := h.catalog.Spread(s.ID)
	if err != nil {
		return tarot.Spread{}, readingRequestError{status: http.StatusBadRequest, message: fmt.Sprintf("unknown spread %q", s.ID)}
	}
	return spread, nil
}

func (h *ReadingHandler) resolveCards(in []cardInput) ([]tarot.Card, error) {
	cards := make([]tarot.Card, len(in))
	for i, c := range in {
		card := tarot.Card{
			ID: c.ID, Name: c.Name, Suit: c.Suit, Type: c.Type, Number: c.Number, Keywords: c.Keywords,
		}
		if c.Name == "" {
			known, err := h.catalog.Card(c.ID)
			if err != nil {
				return nil, readingRequestError{status: http.StatusBadRequest, message: fmt.Sprintf("unknown card %d", c.ID)}
			}
			card = known
		}
		card.Upright = c.Upright == nil || *c.Upright
		cards[i] = card
	}
	return cards, nil
}

func isJSONContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	return err == nil && mediaType == mimeJSON
}

func classifyGenerateError(err error) error {
	var credErr *llm.CredentialError
	switch {
	case errors.As(err, &credErr):
		return readingRequestError{status: http.StatusBadRequest, message: credErr.Error()}
	case errors.Is(err, tarot.ErrInvalidRequest):
		return readingRequestError{status: http.StatusBadRequest, message: err.Error()}
	}
	return err
}

func writeReadingError(w http.ResponseWriter, err error) {
	var reqErr readingRequestError
	if errors.As(err, &reqErr) {
		writeJSON(w, reqErr.status, generateReadingResponse{OK: false, Message: reqErr.message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, generateReadingResponse{OK: false, Message: "Unable to generate reading."})
}
