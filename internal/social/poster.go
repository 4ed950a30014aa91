// Package social delivers accepted announcements to the configured
// platforms. Each poster makes the minimal authenticated call its platform
// needs; formatting decisions were already made upstream.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

const (
	postTimeout = 30 * time.Second

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

// Poster publishes one message to one platform.
type Poster interface {
	// Name returns the platform name, matching domain.Platform* constants.
	Name() string

	// Post publishes the text. The video provides metadata some platforms
	// attach (link cards, thumbnails).
	Post(ctx context.Context, text string, video domain.VideoContext) error
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: postTimeout}
}

// newPostLimiter spaces consecutive posts to one per second. Every target
// platform throttles bot bursts well above that.
func newPostLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 1)
}

// doJSON sends a JSON request and decodes a JSON response into out when out
// is non-nil. Non-2xx statuses become errors carrying the response body.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload, out any) error {
	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
