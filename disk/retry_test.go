package disk_test

import (
	stderrors "errors"
	"testing"

	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/errors"
	"github.com/stretchr/testify/assert"
)

type callCounter struct {
	calls    int
	failures int
	err      error
}

func (c *callCounter) call() error {
	c.calls++
	if c.calls <= c.failures {
		return c.err
	}
	return nil
}

func TestRetrySucceedsFirstTime(t *testing.T) {
	op := callCounter{}
	reset := callCounter{}

	assert.NoError(t, disk.Retry(3, op.call, reset.call))
	assert.Equal(t, 1, op.calls)
	assert.Equal(t, 0, reset.calls)
}

func TestRetrySucceedsOnLastAttempt(t *testing.T) {
	op := callCounter{failures: 2, err: stderrors.New("flaky")}
	reset := callCounter{}

	assert.NoError(t, disk.Retry(3, op.call, reset.call))
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, 2, reset.calls)
}

func TestRetryGivesUp(t *testing.T) {
	opErr := stderrors.New("dead")
	op := callCounter{failures: 100, err: opErr}
	reset := callCounter{}

	err := disk.Retry(3, op.call, reset.call)
	assert.ErrorIs(t, err, errors.ErrReadFailure)
	assert.ErrorIs(t, err, opErr)
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, 3, reset.calls)
}

func TestRetryStopsWhenResetFails(t *testing.T) {
	resetErr := stderrors.New("reset failed")
	op := callCounter{failures: 100, err: stderrors.New("dead")}
	reset := callCounter{failures: 100, err: resetErr}

	err := disk.Retry(3, op.call, reset.call)
	assert.ErrorIs(t, err, errors.ErrReadFailure)
	assert.ErrorIs(t, err, resetErr)
	assert.Equal(t, 1, op.calls)
	assert.Equal(t, 1, reset.calls)
}

func TestRetryZeroAttempts(t *testing.T) {
	op := callCounter{}
	err := disk.Retry(0, op.call, op.call)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Equal(t, 0, op.calls)
}
