package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// localProvider talks to an OpenAI-compatible server on the local network.
// No API key; unreachability and missing models are routine conditions the
// caller falls back from, so they map to typed errors.
type localProvider struct {
	cfg         Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     breaker
}

func newLocalProvider(cfg Config, logger *zerolog.Logger) *localProvider {
	clientCfg := openai.DefaultConfig("")
	clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")

	return &localProvider{
		cfg:         cfg,
		client:      openai.NewClientWithConfig(clientCfg),
		logger:      logger,
		rateLimiter: newLimiter(cfg.RateRPS),
	}
}

func (p *localProvider) Name() ProviderName { return ProviderLocal }

func (p *localProvider) IsAvailable() bool {
	return p.cfg.Endpoint != "" && p.breaker.check() == nil
}

func (p *localProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.breaker.check(); err != nil {
		return "", err
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		p.breaker.failure(p.logger)

		return "", p.mapError(err)
	}

	p.breaker.success()

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrEmptyResponse
	}

	return cleanResult(resp.Choices[0].Message.Content)
}

func (p *localProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s on %s", apperrors.ErrModelNotFound, p.cfg.Model, p.cfg.Endpoint)
		}

		return fmt.Errorf("local completion: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrProviderUnavailable, p.cfg.Endpoint, err)
	}

	return fmt.Errorf("local completion: %w", err)
}
