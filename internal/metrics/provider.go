package metrics

import (
	"context"
	"errors"
	"fmt"

	"eassist/internal/models"
)

// Provider supplies point-in-time host metrics. Implementations may shell out
// or block on OS calls; callers bound every call with a context.
type Provider interface {
	// Snapshot returns a full metrics reading. It fails with *CollectionError
	// on timeout or OS-call failure and never returns a partial snapshot.
	Snapshot(ctx context.Context) (*models.MetricsSnapshot, error)
}

// CollectionError wraps a failed or timed-out metrics collection. It is caught
// at the monitor's tick boundary and converted into an error payload; it never
// terminates the loop.
type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("metrics collection failed (%s): %v", e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// IsCollectionError reports whether err is (or wraps) a CollectionError.
func IsCollectionError(err error) bool {
	var ce *CollectionError
	return errors.As(err, &ce)
}
