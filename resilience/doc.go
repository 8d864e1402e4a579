// Package resilience retries failed tool invocations.
//
// Only errors classified as retryable (a tool killed after exceeding its
// time budget) are retried; tool failures, missing outputs and fatal errors
// return immediately. Backoff is exponential with optional jitter and every
// wait honours context cancellation.
//
//	res, err := resilience.Retry(ctx, resilience.RetryConfig{MaxAttempts: 2}, func() (*process.Result, error) {
//	    return process.Run(ctx, cmd)
//	})
package resilience
