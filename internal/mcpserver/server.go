// Package mcpserver exposes the reading pipeline as Model Context Protocol tools,
// so MCP clients (desktop assistants, IDE agents) can ask for a reading over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/version"
)

const (
	ToolGenerateReading = "generate_reading"
	ToolListSpreads     = "list_spreads"

	serverName = "arcana"
)

// ReadingService runs the reading pipeline. *reading.Service satisfies it.
type ReadingService interface {
	Generate(ctx context.Context, req tarot.ReadingRequest) (*reading.Result, error)
}

// GenerateInput is the argument object of generate_reading.
type GenerateInput struct {
	SpreadID string `json:"spreadId" jsonschema:"spread id from list_spreads, e.g. three-card"`
	Question string `json:"question" jsonschema:"the question or situation to read for"`
	Style    string `json:"style,omitempty" jsonschema:"traditional, intuitive, psychological or mystical (default traditional)"`
	Seed     uint64 `json:"seed,omitempty" jsonschema:"optional seed; the same seed draws the same cards"`
}

// DrawnCard is one card of the reading with its interpretation.
type DrawnCard struct {
	Position  string `json:"position"`
	Name      string `json:"name"`
	Upright   bool   `json:"upright"`
	Meaning   string `json:"meaning"`
	Advice    string `json:"advice"`
	Symbolism string `json:"symbolism"`
}

// GenerateOutput is the structured result of generate_reading.
type GenerateOutput struct {
	ID             string      `json:"id"`
	Source         string      `json:"source"`
	Model          string      `json:"model,omitempty"`
	Spread         string      `json:"spread"`
	Style          string      `json:"style"`
	Question       string      `json:"question"`
	Cards          []DrawnCard `json:"cards"`
	OverallReading string      `json:"overallReading"`
	KeyInsights    []string    `json:"keyInsights"`
	ActionSteps    []string    `json:"actionSteps"`
}

// SpreadSummary describes one spread for list_spreads.
type SpreadSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Positions   []string `json:"positions"`
}

// ListSpreadsOutput is the structured result of list_spreads.
type ListSpreadsOutput struct {
	Spreads []SpreadSummary `json:"spreads"`
}

// Server holds the tool handlers.
type Server struct {
	readings ReadingService
	catalog  *tarot.Catalog
	logger   *slog.Logger
	rng      func(seed uint64) tarot.RNG
}

// New creates a Server over the pipeline and the card catalog.
func New(readings ReadingService, catalog *tarot.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{readings: readings, catalog: catalog, logger: logger, rng: rngFor}
}

func rngFor(seed uint64) tarot.RNG {
	if seed == 0 {
		return tarot.RandomRNG()
	}
	return tarot.NewRNG(seed)
}

// MCP builds the protocol server with every tool registered.
func (s *Server) MCP() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version.Version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGenerateReading,
		Description: "Draw cards for a tarot spread and interpret them for a question.",
	}, s.generateReading)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListSpreads,
		Description: "List the available tarot spreads and their positions.",
	}, s.listSpreads)
	return server
}

// Run serves the tools over stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCP().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) generateReading(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	req, err := s.buildRequest(in)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	res, err := s.readings.Generate(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "mcp generate_reading failed", slog.Any("error", err))
		return nil, GenerateOutput{}, err
	}
	return nil, toOutput(req, res), nil
}

func (s *Server) buildRequest(in GenerateInput) (tarot.ReadingRequest, error) {
	if strings.TrimSpace(in.Question) == "" {
		return tarot.ReadingRequest{}, errors.New("question is required")
	}
	spread, err := s.catalog.Spread(in.SpreadID)
	if err != nil {
		return tarot.ReadingRequest{}, fmt.Errorf("unknown spread %q: call %s for valid ids", in.SpreadID, ToolListSpreads)
	}
	style := tarot.Style(in.Style)
	if style == "" {
		style = tarot.StyleTraditional
	}
	if !style.Valid() {
		return tarot.ReadingRequest{}, fmt.Errorf("unknown style %q", in.Style)
	}

	cards, err := tarot.Draw(s.catalog.Cards, len(spread.Positions), s.rng(in.Seed))
	if err != nil {
		return tarot.ReadingRequest{}, fmt.Errorf("draw for %s: %w", spread.ID, err)
	}
	return tarot.ReadingRequest{
		Cards:               cards,
		Spread:              spread,
		UserPrompt:          in.Question,
		InterpretationStyle: style,
	}, nil
}

func toOutput(req tarot.ReadingRequest, res *reading.Result) GenerateOutput {
	out := GenerateOutput{
		ID:             res.ID,
		Source:         string(res.Source),
		Model:          res.Model,
		Spread:         req.Spread.Name,
		Style:          string(req.InterpretationStyle),
		Question:       req.UserPrompt,
		Cards:          make([]DrawnCard, len(req.Cards)),
		OverallReading: res.Reading.OverallReading,
		KeyInsights:    res.Reading.KeyInsights,
		ActionSteps:    res.Reading.ActionSteps,
	}
	for i, card := range req.Cards {
		interp := res.Reading.CardInterpretations[i]
		out.Cards[i] = DrawnCard{
			Position:  req.Spread.Positions[i].Name,
			Name:      card.Name,
			Upright:   card.Upright,
			Meaning:   interp.Meaning,
			Advice:    interp.Advice,
			Symbolism: interp.Symbolism,
		}
	}
	return out
}

func (s *Server) listSpreads(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ListSpreadsOutput, error) {
	out := ListSpreadsOutput{Spreads: make([]SpreadSummary, len(s.catalog.Spreads))}
	for i, sp := range s.catalog.Spreads {
		positions := make([]string, len(sp.Positions))
		for j, p := range sp.Positions {
			positions[j] = p.Name
		}
		out.Spreads[i] = SpreadSummary{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Difficulty:  string(sp.Difficulty),
			Positions:   positions,
		}
	}
	return nil, out, nil
}
