package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trail-backend/internal/logger"
)

func newTestResilient(next LLMClient, retries int) (*ResilientClient, *[]time.Duration) {
	c := NewResilientClient(next, logger.Nop(), ResilienceOptions{
		Timeout:        time.Second,
		MaxRetries:     retries,
		Backoff:        100 * time.Millisecond,
		MaxBackoff:     time.Second,
		ConcurrentReqs: 1,
	})
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestResilient_RetriesTransientStatus(t *testing.T) {
	stub := &stubLLM{
		errs:      []error{&openAIHTTPError{StatusCode: 503}, &openAIHTTPError{StatusCode: 429}},
		responses: []string{"", "", "ok"},
	}
	c, slept := newTestResilient(stub, 2)

	out, err := c.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, stub.Calls())
	assert.Len(t, *slept, 2)
}

func TestResilient_DoesNotRetryClientErrors(t *testing.T) {
	stub := &stubLLM{errs: []error{&openAIHTTPError{StatusCode: 401, Body: "bad key"}}}
	c, slept := newTestResilient(stub, 3)

	_, err := c.Complete(context.Background(), CompletionRequest{})
	var httpErr *openAIHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.StatusCode)
	assert.Equal(t, 1, stub.Calls())
	assert.Empty(t, *slept)
}

func TestResilient_GivesUpAfterMaxRetries(t *testing.T) {
	transient := &openAIHTTPError{StatusCode: 500}
	stub := &stubLLM{errs: []error{transient, transient, transient, transient}}
	c, _ := newTestResilient(stub, 2)

	_, err := c.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Equal(t, 3, stub.Calls())
}

func TestResilient_HonoursRetryAfterCappedByMaxBackoff(t *testing.T) {
	stub := &stubLLM{
		errs:      []error{&openAIHTTPError{StatusCode: 429, retryAfter: time.Minute}},
		responses: []string{"", "ok"},
	}
	c, slept := newTestResilient(stub, 1)

	_, err := c.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	require.Len(t, *slept, 1)
	// One second cap with ±20% jitter.
	assert.InDelta(t, time.Second.Seconds(), (*slept)[0].Seconds(), 0.2)
}

func TestResilient_StopsWhenCallerCancels(t *testing.T) {
	stub := &stubLLM{errs: []error{&openAIHTTPError{StatusCode: 503}}}
	c, _ := newTestResilient(stub, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, CompletionRequest{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, stub.Calls())
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(context.DeadlineExceeded))
	assert.True(t, isRetryableError(&openAIHTTPError{StatusCode: 408}))
	assert.True(t, isRetryableError(&geminiError{status: 500, err: errors.New("x")}))
	assert.False(t, isRetryableError(&openAIHTTPError{StatusCode: 400}))
	assert.False(t, isRetryableError(errors.New("plain")))
	assert.False(t, isRetryableError(nil))
}
