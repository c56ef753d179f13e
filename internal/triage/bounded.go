package triage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned by Bounded when the call outlives its bound.
var ErrTimeout = errors.New("triage: call timed out")

// Outcome is the result/error union produced by Bounded.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Bounded runs fn with a deadline of timeout and waits no longer than that,
// even when fn ignores its context. A panic inside fn becomes an error.
// A non-positive timeout leaves only the parent context as the bound.
func Bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) Outcome[T] {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan Outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Outcome[T]{Err: fmt.Errorf("triage: panic: %v", r)}
			}
		}()
		value, err := fn(ctx)
		done <- Outcome[T]{Value: value, Err: err}
	}()

	select {
	case out := <-done:
		if out.Err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			out.Err = fmt.Errorf("%w: %v", ErrTimeout, out.Err)
		}
		return out
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome[T]{Err: ErrTimeout}
		}
		return Outcome[T]{Err: ctx.Err()}
	}
}
