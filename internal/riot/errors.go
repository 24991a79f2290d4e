package riot

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is terminal: the upstream confirmed the resource does not
// exist. It is never retried and must not be mistaken for an empty
// result.
var ErrNotFound = errors.New("riot: resource not found")

// InvalidRegionError is returned for regions outside the supported
// routing set. Caller input error; fails immediately, no retry.
type InvalidRegionError struct {
	Region string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("riot: invalid region %q, must be one of %v", e.Region, Regions)
}

// TransientError covers rate limiting, 5xx responses, and transport
// failures. The client retries these internally; one escaping to a
// caller means the retry ceiling was exhausted.
type TransientError struct {
	StatusCode int           // 0 for transport-level failures
	RetryAfter time.Duration // server hint from a 429, if present
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("riot: transient failure: %v", e.Err)
	}
	return fmt.Sprintf("riot: upstream error: status %d", e.StatusCode)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
