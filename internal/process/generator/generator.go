// Package generator runs the generate-validate-retry loop that turns a new
// video into one platform-ready announcement.
package generator

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tubecrier/tubecrier/internal/core/domain"
	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
	"github.com/tubecrier/tubecrier/internal/core/llm"
	"github.com/tubecrier/tubecrier/internal/platform/observability"
	"github.com/tubecrier/tubecrier/internal/process/dedup"
	"github.com/tubecrier/tubecrier/internal/process/prompt"
	"github.com/tubecrier/tubecrier/internal/process/validate"
)

// DedupScope controls whether recent-message novelty is checked across all
// platforms or per platform.
type DedupScope string

const (
	// ScopeGlobal shares one recent-message cache across platforms, so
	// near-identical wording cannot go out to two platforms at once.
	ScopeGlobal DedupScope = "global"
	// ScopePlatform keeps an independent cache per platform.
	ScopePlatform DedupScope = "platform"
)

const defaultMaxAttempts = 3

// Options tune the retry loop and the novelty caches.
type Options struct {
	MaxAttempts    int
	DedupScope     DedupScope
	DedupCapacity  int
	DedupThreshold float64
}

// Result is the outcome of one generation run. Accepted means Text passed
// every check; otherwise Body holds the best candidate produced and
// Violations what still failed, for the caller to decide on a fallback.
type Result struct {
	// Text is the final postable message, link included.
	Text string
	// Body is the validated message without the link.
	Body       string
	Attempts   int
	Accepted   bool
	Violations []string
}

// Generator drives prompt building, provider calls, validation and the
// novelty record for one provider.
type Generator struct {
	provider llm.Provider
	rules    validate.Rules
	opts     Options
	logger   *zerolog.Logger

	mu     sync.Mutex
	caches map[string]*dedup.Cache
}

func New(provider llm.Provider, rules validate.Rules, opts Options, logger *zerolog.Logger) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}

	if opts.DedupScope == "" {
		opts.DedupScope = ScopeGlobal
	}

	return &Generator{
		provider: provider,
		rules:    rules,
		opts:     opts,
		logger:   logger,
		caches:   make(map[string]*dedup.Cache),
	}
}

// Generate produces an announcement for the video on the given platform.
// Every attempt consumes one slot whether the provider errored or the
// candidate failed validation; after the first failure the prompt switches
// to strict mode and quotes the violations back at the model.
//
// On exhaustion the last candidate is returned with Accepted false and nil
// error. ErrNoCandidate is returned only when no attempt produced any text.
func (g *Generator) Generate(ctx context.Context, video domain.VideoContext, platform string) (Result, error) {
	profile, err := domain.GetProfile(platform)
	if err != nil {
		return Result{}, err
	}

	cache := g.cacheFor(profile.Name)
	budget := bodyBudget(profile, video.URL)

	res := Result{}
	strict := false

	var violations []string

	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		res.Attempts = attempt

		p := prompt.Build(prompt.Input{
			Video:          video,
			Profile:        profile,
			Budget:         budget,
			MaxEmojiCount:  g.rules.MaxEmojiCount,
			ForbiddenWords: g.rules.ForbiddenWords,
			Strict:         strict,
			Violations:     violations,
		})

		text, err := g.provider.Generate(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}

			g.logger.Warn().Err(err).
				Str("platform", profile.Name).
				Int("attempt", attempt).
				Msg("provider call failed")

			strict = true

			continue
		}

		body := validate.FitBody(text, video.URL, profile.MaxChars)

		violations = validate.Check(body, video, profile, g.rules, cache)
		if len(violations) == 0 && !cache.RecordIfFresh(dedup.Normalize(body)) {
			// Another goroutine posted something too similar between
			// the check and the record.
			violations = []string{"too similar to a recent message"}
		}

		observability.ValidationViolations.WithLabelValues(profile.Name).Add(float64(len(violations)))

		res.Body = body
		res.Violations = violations

		if len(violations) == 0 {
			res.Text = validate.AppendURL(body, video.URL)
			res.Accepted = true

			return res, nil
		}

		g.logger.Debug().
			Str("platform", profile.Name).
			Int("attempt", attempt).
			Strs("violations", violations).
			Msg("candidate rejected")

		strict = true
	}

	if res.Body == "" {
		return res, fmt.Errorf("%w: %s after %d attempts", apperrors.ErrNoCandidate, profile.Name, res.Attempts)
	}

	return res, nil
}

// Warm seeds the novelty cache with previously posted messages, oldest
// first, so restarts do not forget what was just announced. With global
// scope the platform argument is ignored.
func (g *Generator) Warm(platform string, messages []string) {
	cache := g.cacheFor(platform)

	for _, msg := range messages {
		cache.Record(dedup.Normalize(msg))
	}
}

func (g *Generator) cacheFor(platform string) *dedup.Cache {
	key := ""
	if g.opts.DedupScope == ScopePlatform {
		key = platform
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cache, ok := g.caches[key]
	if !ok {
		cache = dedup.NewCache(g.opts.DedupCapacity, g.opts.DedupThreshold)
		g.caches[key] = cache
	}

	return cache
}

// bodyBudget is the character allowance quoted to the model once the
// appended link is reserved.
func bodyBudget(profile domain.PlatformProfile, url string) int {
	if url == "" {
		return profile.MaxChars
	}

	budget := profile.MaxChars - len([]rune(url)) - 2
	if budget < 0 {
		return 0
	}

	return budget
}
