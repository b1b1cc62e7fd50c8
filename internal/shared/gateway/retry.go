package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTransient 重试耗尽后仍为瞬时故障
var ErrTransient = errors.New("transient storage failure")

// RetryPolicy 统一重试策略
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	// Retryable 判定错误是否可重试，为空时使用 IsTransient
	Retryable func(err error) bool
}

// LinearBackoff 线性退避：第 n 次失败后等待 n*step
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// DefaultRetryPolicy 3 次尝试，attempt*1s 退避
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(time.Second),
	}
}

// Do 按策略执行 op，只重试瞬时故障
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%w: %v (retry cancelled: %v)", ErrTransient, err, ctx.Err())
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrTransient, attempts, err)
}
