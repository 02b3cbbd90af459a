package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v2"

	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
)

const (
	defaultMaxRetries = 2
	defaultBackoff    = 500 * time.Millisecond
	defaultTimeout    = 15 * time.Second
)

// RetryConfig bounds how a completion is retried. Backoff is fixed, not exponential:
// a shopper is waiting on the other end.
type RetryConfig struct {
	MaxRetries        int
	Backoff           time.Duration
	PerAttemptTimeout time.Duration
}

// DefaultRetryConfig allows two extra attempts with a short fixed pause.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        defaultMaxRetries,
		Backoff:           defaultBackoff,
		PerAttemptTimeout: defaultTimeout,
	}
}

func (r RetryConfig) withDefaults() RetryConfig {
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	if r.Backoff <= 0 {
		r.Backoff = defaultBackoff
	}
	if r.PerAttemptTimeout <= 0 {
		r.PerAttemptTimeout = defaultTimeout
	}
	return r
}

// shouldRetry reports whether status is worth another attempt.
func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// isRetryable classifies an attempt error. parent is the caller's context: once it
// is done nothing is retried.
func isRetryable(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return shouldRetry(apiErr.StatusCode)
	}
	return false
}

// retryWithBackoff runs attempt up to 1+MaxRetries times, each under its own timeout.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, logger *observability.Logger, attempt func(context.Context) error) error {
	cfg = cfg.withDefaults()
	var lastErr error

	for i := 0; i <= cfg.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, cfg.PerAttemptTimeout)
		lastErr = attempt(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if !isRetryable(ctx, lastErr) || i == cfg.MaxRetries {
			break
		}

		logger.Warn().
			Err(lastErr).
			Int("attempt", i+1).
			Int("max_attempts", cfg.MaxRetries+1).
			Dur("backoff", cfg.Backoff).
			Msg("Completion attempt failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Backoff):
		}
	}

	return lastErr
}
