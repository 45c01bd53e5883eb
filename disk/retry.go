package disk

import (
	"github.com/hashicorp/go-multierror"
	"github.com/newcomb-luke/wustite/errors"
)

// DefaultReadAttempts is the number of times a sector read is tried before
// giving up.
const DefaultReadAttempts = 3

// Retry calls `op` up to `attempts` times. After each failure `reset` is called
// before the next try; if the reset itself fails, Retry stops immediately.
// The returned error is an [errors.ErrReadFailure] carrying every error seen.
func Retry(attempts int, op func() error, reset func() error) error {
	var failures error

	for attempt := 0; attempt < attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		failures = multierror.Append(failures, err)

		resetErr := reset()
		if resetErr != nil {
			failures = multierror.Append(failures, resetErr)
			break
		}
	}

	if failures == nil {
		return errors.ErrInvalidArgument.WithMessage("retry budget must be positive")
	}
	return errors.ErrReadFailure.Wrap(failures)
}
