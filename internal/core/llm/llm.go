// Package llm wraps the text-generation backends behind a single Provider
// interface. Two real backends exist: a local OpenAI-compatible endpoint
// (Ollama, llama.cpp server and friends) and a hosted cloud API.
package llm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// Config holds the generation backend settings.
type Config struct {
	Provider    ProviderName
	Endpoint    string // local only, base URL of the OpenAI-compatible server
	APIKey      string // cloud only
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration // per-request deadline, 0 means none
	RateRPS     float64
}

// New builds the configured provider.
func New(cfg Config, logger *zerolog.Logger) (Provider, error) {
	switch cfg.Provider {
	case ProviderLocal:
		return newLocalProvider(cfg, logger), nil
	case ProviderCloud:
		return newCloudProvider(cfg, logger), nil
	case ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// ErrCircuitBreakerOpen indicates the circuit breaker is open.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = time.Minute

	rateLimiterBurst = 2
)

// newLimiter treats an unset RPS as unlimited rather than blocked.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, rateLimiterBurst)
	}

	return rate.NewLimiter(rate.Limit(rps), rateLimiterBurst)
}

// breaker trips after repeated consecutive failures so a dead endpoint is
// not hammered on every poll.
type breaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	openUntil           time.Time
}

func (b *breaker) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Now().Before(b.openUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, b.openUntil)
	}

	return nil
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
}

func (b *breaker) failure(logger *zerolog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if b.consecutiveFailures >= circuitBreakerThreshold {
		b.openUntil = time.Now().Add(circuitBreakerTimeout)
		logger.Warn().
			Int("consecutive_failures", b.consecutiveFailures).
			Time("open_until", b.openUntil).
			Msg("Circuit breaker opened")
	}
}

// cleanResult normalizes raw model output and rejects responses that clean
// down to nothing.
func cleanResult(content string) (string, error) {
	text := Clean(content)
	if text == "" {
		return "", apperrors.ErrEmptyResponse
	}

	return text, nil
}
