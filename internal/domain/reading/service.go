package reading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/eventbus"
	"github.com/matiasleandrokruk/arcana/internal/infra/llm"
)

// TopicReadingGenerated is published after every successful Generate.
const TopicReadingGenerated = "reading.generated"

// Source tells callers where a Reading came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Generator is the model side of the pipeline. *llm.Invoker satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*llm.ChatResponse, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	ID        string         `json:"id"`
	Reading   *tarot.Reading `json:"reading"`
	Source    Source         `json:"source"`
	Model     string         `json:"model,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// GeneratedEvent is the payload of TopicReadingGenerated.
// Request never carries the caller's API key.
type GeneratedEvent struct {
	OwnerID string
	Request tarot.ReadingRequest
	Result  Result
}

type ownerCtxKey struct{}

// WithOwner attributes readings generated under ctx to userID.
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, userID)
}

// OwnerFrom returns the user set by WithOwner, or "".
func OwnerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ownerCtxKey{}).(string)
	return id
}

// Service runs the reading pipeline.
type Service struct {
	gen    Generator
	bus    eventbus.EventBus
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service. bus may be nil when nothing listens for results.
func NewService(gen Generator, bus eventbus.EventBus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, bus: bus, logger: logger, now: time.Now}
}

// Generate validates req, asks the model for a reading and falls back to a templated one
// on any failure except a missing credential.
// Errors: tarot.ErrInvalidRequest (wrapped) for malformed input, *llm.CredentialError untouched.
func (s *Service) Generate(ctx context.Context, req tarot.ReadingRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.APIKey != "" {
		ctx = llm.WithRequestKey(ctx, req.APIKey)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("reading id: %w", err)
	}
	res := &Result{ID: id.String(), CreatedAt: s.now().UTC()}

	reading, model, err := s.fromModel(ctx, req)
	var credErr *llm.CredentialError
	switch {
	case errors.As(err, &credErr):
		return nil, credErr
	case err != nil:
		s.logger.WarnContext(ctx, "reading model path failed, using fallback",
			slog.String("reading_id", res.ID),
			slog.String("stage", stageOf(err)),
			slog.Any("error", err))
		res.Reading = Fallback(req.Cards, req.Spread, req.UserPrompt, req.InterpretationStyle)
		res.Source = SourceFallback
	default:
		res.Reading = reading
		res.Source = SourceModel
		res.Model = model
	}

	s.publish(ctx, req, *res)
	return res, nil
}

func (s *Service) fromModel(ctx context.Context, req tarot.ReadingRequest) (*tarot.Reading, string, error) {
	resp, err := s.gen.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return nil, "", err
	}
	reading, err := ParseReading(resp.Content, len(req.Cards))
	if err != nil {
		return nil, "", err
	}
	return reading, resp.Model, nil
}

func (s *Service) publish(ctx context.Context, req tarot.ReadingRequest, res Result) {
	if s.bus == nil {
		return
	}
	req.APIKey = ""
	s.bus.Publish(TopicReadingGenerated, GeneratedEvent{OwnerID: OwnerFrom(ctx), Request: req, Result: res})
}

func stageOf(err error) string {
	var parseErr *ParseError
	var validationErr *ValidationError
	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &validationErr):
		return "validate"
	default:
		return "model"
	}
}
