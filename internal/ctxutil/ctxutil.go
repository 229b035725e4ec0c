// Package ctxutil provides context helpers shared by the pipeline packages.
package ctxutil

import (
	"context"
	"time"
)

// Canceled returns the context error once ctx is done, nil otherwise.
// It is checked before starting any new scenario or step.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Detached returns a context that keeps ctx's values (logger, run ID) but
// ignores its cancellation, bounded by timeout instead. An in-flight step
// runs on it so an interrupt lets the step finish or time out.
func Detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
