package main

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/infra/config"
	"github.com/matiasleandrokruk/arcana/internal/infra/eventbus"
	"github.com/matiasleandrokruk/arcana/internal/infra/llm"
)

// newInvoker wires both OpenAI-compatible backends behind the default credential order.
// extra sources are probed after the defaults.
func newInvoker(cfg config.Config, extra ...llm.CredentialSource) *llm.Invoker {
	httpClient := &http.Client{Timeout: cfg.LLMTimeout}
	router := llm.NewRouter(map[string]llm.ProviderFactory{
		llm.ProviderXAI:    llm.OpenAICompatFactory(httpClient, llm.ProviderXAI, cfg.XAIBaseURL, cfg.XAIModel),
		llm.ProviderOpenAI: llm.OpenAICompatFactory(httpClient, llm.ProviderOpenAI, cfg.OpenAIBaseURL, cfg.OpenAIModel),
	})
	invoker := llm.NewInvoker(router, llm.DefaultSources(cfg.XAIAPIKey, cfg.OpenAIAPIKey, cfg.PublicOpenAIAPIKey)...)
	if len(extra) > 0 {
		invoker = invoker.WithSources(extra...)
	}
	return invoker
}

func newReadingService(cfg config.Config, bus eventbus.EventBus, logger *slog.Logger, extra ...llm.CredentialSource) *reading.Service {
	return reading.NewService(newInvoker(cfg, extra...), bus, logger)
}

func jsonLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// cliLogger keeps interactive commands quiet unless LOG_LEVEL asks for more than warnings.
func cliLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: max(level, slog.LevelWarn)}))
}
