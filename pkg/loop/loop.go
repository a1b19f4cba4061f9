package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after a task returns.
type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop after interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}
	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Continue keeps the loop going, sleeping interval before the next pass.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break stops the loop. Pass nil to stop without error.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is one pass of a loop. It receives the value the previous pass
// returned, and decides how to proceed via Next.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task repeatedly until it returns Break or ctx is done.
//
// The task is first called as task(ctx, init). The zero Next is
// equivalent to Continue(0). Start returns the last T together with the
// error from Break(err) or ctx.Err() on cancellation.
func Start[T any](ctx context.Context, init T, task Task[T], options ...Option) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &config{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(lc.ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		}
		if n.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down has priority over the timer.
			if !timer.Stop() {
				<-timer.C
			}
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type config struct {
	ctx      context.Context
	deferred func()
}

type Option func(*config) *config

// WithTimeout bounds each pass of the loop.
//
// The timeout is set on the context passed to the task.
func WithTimeout(d time.Duration) Option {
	return func(lc *config) *config {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &config{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
