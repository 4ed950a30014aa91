package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// cloudProvider is the hosted fallback. Auth and quota problems come back
// as typed errors so the caller can tell a bad key from a transient limit.
type cloudProvider struct {
	cfg         Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     breaker
}

func newCloudProvider(cfg Config, logger *zerolog.Logger) *cloudProvider {
	return &cloudProvider{
		cfg:         cfg,
		client:      openai.NewClient(cfg.APIKey),
		logger:      logger,
		rateLimiter: newLimiter(cfg.RateRPS),
	}
}

func (p *cloudProvider) Name() ProviderName { return ProviderCloud }

func (p *cloudProvider) IsAvailable() bool {
	return p.cfg.APIKey != "" && p.breaker.check() == nil
}

func (p *cloudProvider) Generate(ctx context.Context, prompt string) (string, error) {
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

func (p *cloudProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: check the API key", apperrors.ErrAuthentication)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, apiErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", apperrors.ErrModelNotFound, p.cfg.Model)
		}
	}

	return fmt.Errorf("cloud completion: %w", err)
}
