package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trail-backend/internal/logger"
)

type ResilienceOptions struct {
	Timeout        time.Duration // per attempt
	MaxRetries     int
	Backoff        time.Duration // first retry delay, doubled each attempt
	MaxBackoff     time.Duration
	ConcurrentReqs int
}

// ResilientClient wraps an LLMClient with a concurrency slot pool, a
// per-attempt timeout and bounded retries for transient failures.
type ResilientClient struct {
	next     LLMClient
	log      *logger.Logger
	opts     ResilienceOptions
	rateChan chan struct{} // Token bucket
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewResilientClient(next LLMClient, log *logger.Logger, opts ResilienceOptions) *ResilientClient {
	if opts.ConcurrentReqs <= 0 {
		opts.ConcurrentReqs = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	rateChan := make(chan struct{}, opts.ConcurrentReqs)
	for i := 0; i < opts.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &ResilientClient{
		next:     next,
		log:      log.With("service", "ResilientLLM"),
		opts:     opts,
		rateChan: rateChan,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// acquireRate blocks until a rate slot is available
func (c *ResilientClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for LLM rate slot")
	}
}

func (c *ResilientClient) releaseRate() {
	c.rateChan <- struct{}{}
}

func (c *ResilientClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.acquireRate(ctx); err != nil {
		return "", err
	}
	defer c.releaseRate()

	backoff := c.opts.Backoff
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := c.attempt(ctx, req)
		if err == nil {
			return out, nil
		}
		// The caller gave up; its deadline is not ours to retry.
		if ctx.Err() != nil {
			return "", err
		}
		if !isRetryableError(err) {
			return "", err
		}
		if attempt >= c.opts.MaxRetries {
			if attempt == 0 {
				return "", err
			}
			return "", fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		sleepFor := jitter(retryAfter(err, backoff, c.opts.MaxBackoff))
		c.log.Warn("LLM request retrying",
			"attempt", attempt+1,
			"max_retries", c.opts.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := c.sleep(ctx, sleepFor); err != nil {
			return "", err
		}
		backoff *= 2
	}
}

func (c *ResilientClient) attempt(ctx context.Context, req CompletionRequest) (string, error) {
	if c.opts.Timeout <= 0 {
		return c.next.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	out, err := c.next.Complete(attemptCtx, req)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("LLM attempt timed out after %s: %w", c.opts.Timeout, context.DeadlineExceeded)
	}
	return out, err
}
