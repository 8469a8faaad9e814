package llmgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"studysphere/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// OllamaGenerator implements domain.AnswerGenerator against a local Ollama
// server. It is optional: the cascade only uses it when an LLM server is
// configured.
type OllamaGenerator struct {
	llm    *ollama.LLM
	logger *zap.Logger
}

func NewOllamaGenerator(serverURL, model string, logger *zap.Logger) (*OllamaGenerator, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	logger.Info("Initialized local LLM generator",
		zap.String("server_url", serverURL),
		zap.String("model", model),
	)
	return &OllamaGenerator{llm: llm, logger: logger}, nil
}

// Generate runs a single-prompt completion.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	return out, nil
}

var _ domain.AnswerGenerator = (*OllamaGenerator)(nil)
