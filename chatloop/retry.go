package chatloop

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/agentchat/agentchat/llmwire"
)

// RetryPolicy configures orchestrator-side retry with exponential backoff.
// Provider adapters never retry themselves; the loop retries only errors
// llmwire classifies as transient.
type RetryPolicy struct {
	MaxRetries        int     // retry attempts beyond the initial call
	BaseDelay         float64 // initial delay in seconds
	MaxDelay          float64 // maximum delay between retries
	BackoffMultiplier float64
	Jitter            bool
}

// DefaultRetryPolicy returns the default policy: two retries with jittered
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        2,
		BaseDelay:         1.0,
		MaxDelay:          30.0,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Delay calculates the delay for attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := math.Min(p.BaseDelay*math.Pow(p.BackoffMultiplier, float64(attempt)), p.MaxDelay)
	if p.Jitter {
		delay = delay * (0.5 + rand.Float64())
	}
	return time.Duration(delay * float64(time.Second))
}

// retryComplete executes fn, retrying transient failures per the policy.
func retryComplete(ctx context.Context, policy RetryPolicy, fn func(context.Context) (*llmwire.Completion, error)) (*llmwire.Completion, error) {
	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}

	for attempt := 0; attempt < policy.MaxRetries; attempt++ {
		if !llmwire.IsRetryable(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Delay(attempt)):
		}

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
	}

	return nil, err
}
