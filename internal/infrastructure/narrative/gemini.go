// Package narrative turns prompts into free text using a hosted language model.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	"google.golang.org/genai"
)

var ErrNoCandidates = errors.New("model returned no text")

// contentGenerator is the slice of *genai.Models the adapter uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini builds the client once at startup; it is safe for concurrent use.
func NewGemini(ctx context.Context, cfg GeminiConfig, httpClient *http.Client, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(models contentGenerator, cfg GeminiConfig, logger *slog.Logger) *Gemini {
	return &Gemini{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "gemini", "model", cfg.Model),
	}
}

// Generate sends prompt as a single user turn and returns the model's text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.UpstreamDuration.WithLabelValues("gemini", outcome).Observe(time.Since(start).Seconds())
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.ErrorContext(ctx, "generate content", "prompt_bytes", len(prompt), "error", err)
		return "", fmt.Errorf("%w: generate content: %v", domain.ErrUpstream, err)
	}

	text, err = responseText(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "empty model response", "prompt_bytes", len(prompt), "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked: %s", ErrNoCandidates, resp.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}

	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", ErrNoCandidates
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", ErrNoCandidates
	}
	return sb.String(), nil
}
