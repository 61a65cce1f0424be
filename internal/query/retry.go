package query

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a failed fetch is retried and how long to wait between attempts.
// Delays double from InitialInterval and are capped at MaxInterval.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries twice, waiting 1s then 2s, never more than 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialInterval: time.Second, MaxInterval: 10 * time.Second}
}

// NoRetry fails on the first error.
func NoRetry() *RetryPolicy {
	return &RetryPolicy{}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// run calls op until it succeeds or the policy is exhausted. notify is called before each retry.
// It returns the last result and the number of failed attempts.
func (p RetryPolicy) run(ctx context.Context, op func(context.Context) (any, error), notify func(err error, wait time.Duration, attempt int)) (any, int, error) {
	var (
		data     any
		failures int
	)
	err := backoff.RetryNotify(func() error {
		v, err := op(ctx)
		if err != nil {
			failures++
			return err
		}
		data = v
		return nil
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		if notify != nil {
			notify(err, wait, failures)
		}
	})
	return data, failures, err
}
