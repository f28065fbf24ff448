package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/config"
)

const (
	defaultSpread = "three-card"
	defaultStyle  = string(tarot.StyleTraditional)
)

type readOptions struct {
	spread   string
	style    string
	question string
	seed     uint64
	apiKey   string
	asJSON   bool
}

// readOutput is what --json prints.
type readOutput struct {
	Request tarot.ReadingRequest `json:"request"`
	Result  *reading.Result      `json:"result"`
}

func (c *cli) readCmd() *cobra.Command {
	var opts readOptions
	cmd := &cobra.Command{
		Use:   "read [question]",
		Short: "Draw cards and interpret them",
		Long: `Read draws a spread from the built-in deck and interprets it for your question.

The model key is taken from XAI_API_KEY, OPENAI_API_KEY, --api-key or the
key saved with 'arcana key set', in that order. Without a reachable model the
reading is assembled from the card keywords instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				if opts.question != "" {
					return usageError{errors.New("pass the question either as an argument or with --question")}
				}
				opts.question = strings.Join(args, " ")
			}
			return c.read(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.spread, "spread", defaultSpread, "spread id (see 'arcana spreads')")
	f.StringVar(&opts.style, "style", defaultStyle, "interpretation style: traditional, intuitive, psychological or mystical")
	f.StringVarP(&opts.question, "question", "q", "", "question to read for")
	f.Uint64Var(&opts.seed, "seed", 0, "seed for the draw; 0 draws at random")
	f.StringVar(&opts.apiKey, "api-key", "", "OpenAI API key for this reading only")
	f.BoolVar(&opts.asJSON, "json", false, "print the request and result as JSON")
	return cmd
}

func (c *cli) read(cmd *cobra.Command, opts readOptions) error {
	if strings.TrimSpace(opts.question) == "" {
		return usageError{errors.New("a question is required")}
	}
	catalog, err := tarot.LoadCatalog()
	if err != nil {
		return err
	}
	req, err := drawRequest(catalog, opts)
	if err != nil {
		return err
	}

	cfg := config.Load()
	svc := newReadingService(cfg, nil, cliLogger(c.errOut, cfg.LogLevel), c.store().Source())
	res, err := svc.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if opts.asJSON {
		req.APIKey = ""
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(readOutput{Request: req, Result: res})
	}
	return c.renderer().Reading(req, res)
}

func drawRequest(catalog *tarot.Catalog, opts readOptions) (tarot.ReadingRequest, error) {
	spread, err := catalog.Spread(opts.spread)
	if err != nil {
		return tarot.ReadingRequest{}, usageError{err}
	}
	style := tarot.Style(strings.ToLower(strings.TrimSpace(opts.style)))
	if _, ok := catalog.Style(style); !ok {
		return tarot.ReadingRequest{}, usageError{fmt.Errorf("unknown style %q", opts.style)}
	}
	rng := tarot.RandomRNG()
	if opts.seed != 0 {
		rng = tarot.NewRNG(opts.seed)
	}
	cards, err := tarot.Draw(catalog.Cards, len(spread.Positions), rng)
	if err != nil {
		return tarot.ReadingRequest{}, err
	}
	return tarot.ReadingRequest{
		Cards:               cards,
		Spread:              spread,
		UserPrompt:          strings.TrimSpace(opts.question),
		InterpretationStyle: style,
		APIKey:              strings.TrimSpace(opts.apiKey),
	}, nil
}
