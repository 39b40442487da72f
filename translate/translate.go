// Package translate implements batched machine translation of locale
// strings and flat documents via HTTP MT providers (DeepL, LibreTranslate),
// with exponential-backoff retry on rate limiting and concurrent
// per-language orchestration.
package translate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// RateLimitError reports a provider throttling signal (HTTP 429 or an
// equivalent "too many requests" indication). It is the only error class
// the client retries.
type RateLimitError struct {
	// RetryAfter is the provider's wait hint, 0 if none was given.
	RetryAfter time.Duration
	// Message carries a truncated provider response for diagnostics.
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return "rate limited: " + e.Message
	}
	return "rate limited"
}

// ExhaustedError reports that every rate-limit retry was used up.
// It wraps the last RateLimitError.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// ErrEmptyTranslation is returned when a provider yields no text for a
// flat-document unit. The affected language is skipped with a warning;
// other languages proceed.
var ErrEmptyTranslation = errors.New("provider returned empty translation")

// ---------------------------------------------------------------------------
// Provider capability
// ---------------------------------------------------------------------------

// Provider is the external translation capability. Implementations return
// one translated string per input text, in the same order. Throttling is
// reported as *RateLimitError; any other error is fatal and not retried.
type Provider interface {
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// ---------------------------------------------------------------------------
// Retrying client
// ---------------------------------------------------------------------------

// Retry defaults: 5 retries means 6 total attempts, with delays of
// 1s, 2s, 4s, 8s, 16s before retries 1..5.
const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = time.Second
)

// Client wraps a Provider with exponential-backoff retry on rate limiting.
type Client struct {
	Provider Provider
	// MaxRetries is the number of rate-limit retries per batch (default 5).
	MaxRetries int
	// BaseDelay is the delay before the first retry; each further retry
	// doubles it (default 1s). A larger provider Retry-After hint wins.
	BaseDelay time.Duration
}

func (c *Client) effectiveMaxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return DefaultMaxRetries
}

func (c *Client) effectiveBaseDelay() time.Duration {
	if c.BaseDelay > 0 {
		return c.BaseDelay
	}
	return DefaultBaseDelay
}

// TranslateBatch translates one batch of texts into targetLang.
//
// On rate limiting it waits BaseDelay·2^(k−1) before retry k and tries
// again, up to MaxRetries times; exhausting retries returns an
// *ExhaustedError wrapping the last rate-limit error. Fatal provider
// errors propagate immediately. Only the calling goroutine sleeps.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	retries := c.effectiveMaxRetries()

	for attempt := 0; ; attempt++ {
		out, err := c.Provider.Translate(ctx, texts, targetLang)
		if err == nil {
			if len(out) != len(texts) {
				return nil, fmt.Errorf("provider returned %d translations for %d texts", len(out), len(texts))
			}
			return out, nil
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			return nil, err
		}
		if attempt >= retries {
			return nil, &ExhaustedError{Attempts: attempt + 1, Last: rl}
		}

		delay := c.effectiveBaseDelay() << attempt
		if rl.RetryAfter > delay {
			delay = rl.RetryAfter
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
