// ABOUTME: Error taxonomy for activity store queries.
// ABOUTME: Sentinels for store-level failures plus a wrapper for failed queries.
package query

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the backing store cannot be reached at all.
	ErrStoreUnavailable = errors.New("activity store unavailable")

	// ErrNoPermission means the caller may not read the store.
	ErrNoPermission = errors.New("no permission to read activity store")

	// ErrNoWorkoutsFound means a workout lookup matched nothing.
	ErrNoWorkoutsFound = errors.New("no workouts found")

	// ErrAmbiguousWorkout means an ID prefix matched more than one workout.
	ErrAmbiguousWorkout = errors.New("ambiguous prefix")

	// ErrStaleDelivery is returned to a store that delivers a batch after
	// its invocation finished or was superseded.
	ErrStaleDelivery = errors.New("stale batch delivery")
)

// UpstreamQueryFailedError wraps a failure from an individual query.
type UpstreamQueryFailedError struct {
	Op  string
	Err error
}

func (e *UpstreamQueryFailedError) Error() string {
	return fmt.Sprintf("upstream query %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamQueryFailedError) Unwrap() error {
	return e.Err
}

// UpstreamFailed wraps err as an UpstreamQueryFailedError for op.
// Errors that are already wrapped are returned unchanged.
func UpstreamFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	var upstream *UpstreamQueryFailedError
	if errors.As(err, &upstream) {
		return err
	}
	return &UpstreamQueryFailedError{Op: op, Err: err}
}

// IsUpstreamFailure reports whether err came from a failed query.
func IsUpstreamFailure(err error) bool {
	var upstream *UpstreamQueryFailedError
	return errors.As(err, &upstream)
}
