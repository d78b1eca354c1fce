package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/Aadit-17/RevEase/internal/adapters/observability"
)

// Client talks to Gemini through its OpenAI-compatible endpoint. One prompt,
// one completion, no retries: callers own the fallback when a call fails.
type Client struct {
	model llms.Model
	rl    *rate.Limiter
}

func New(base, key, model string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	llm, err := openai.New(
		openai.WithToken(key),
		openai.WithBaseURL(base),
		openai.WithModel(model),
		openai.WithHTTPClient(&http.Client{Timeout: 20 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}
	return &Client{
		model: llm,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Complete issues a single-shot prompt. An empty completion is an error so
// the caller's fallback kicks in instead of an empty field being persisted.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	observability.ObserveExternal("gemini", "generate", status, time.Since(start))

	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errors.New("gemini: empty completion")
	}
	return out, nil
}
