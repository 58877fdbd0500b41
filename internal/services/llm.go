package services

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"time"
)

// ErrEmptyCompletion is returned by adapters when the provider answered with
// no text. It is an adapter failure, not a parse or schema failure.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// CompletionRequest is one chat completion: a system prompt, a user prompt,
// and whether the provider should be forced into JSON output.
type CompletionRequest struct {
	System      string
	User        string
	JSON        bool
	Temperature float64
	MaxTokens   int
}

// LLMClient is the adapter boundary to a chat-completion provider.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// httpStatusCoder is implemented by provider errors that carry an HTTP status.
type httpStatusCoder interface {
	HTTPStatusCode() int
}

// retryAfterHinter is implemented by provider errors that carry a Retry-After hint.
type retryAfterHinter interface {
	RetryAfter() time.Duration
}

func isRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

// isRetryableError reports whether a failed attempt is worth repeating.
// Cancellation of the caller's context is never retryable; the caller checks
// that separately.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc httpStatusCoder
	if errors.As(err, &sc) {
		return isRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

func retryAfter(err error, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	var h retryAfterHinter
	if errors.As(err, &h) {
		if ra := h.RetryAfter(); ra > 0 {
			sleepFor = ra
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

// jitter spreads d by ±20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := d.Seconds() * 0.2
	low := d.Seconds() - delta
	high := d.Seconds() + delta
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}
