package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/stretchr/testify/assert"
)

func TestDriverErrorWithMessage(t *testing.T) {
	newErr := errors.ErrInvalidName.WithMessage("asdfqwerty")
	assert.Equal(
		t, "Invalid file name: asdfqwerty", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, errors.ErrInvalidName)
	assert.NotErrorIs(t, newErr, errors.ErrNotFound)
	assert.Equal(t, errors.KindInvalidName, newErr.Kind())
}

func TestDriverErrorWrap(t *testing.T) {
	originalErr := stderrors.New("original error")
	newErr := errors.ErrReadFailure.Wrap(originalErr)
	expectedMessage := "Disk read failed: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, errors.ErrReadFailure, "kind not preserved")
}

func TestDriverErrorWrapKeepsEveryCause(t *testing.T) {
	first := stderrors.New("first")
	second := stderrors.New("second")
	newErr := errors.ErrReadFailure.Wrap(first).Wrap(second)

	assert.Equal(t, "Disk read failed: first: second", newErr.Error())
	assert.ErrorIs(t, newErr, first)
	assert.ErrorIs(t, newErr, second)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("mount: %w", errors.ErrBadBootSector.WithMessage("bad"))
	assert.Equal(t, errors.KindBadBootSector, errors.KindOf(wrapped))
	assert.ErrorIs(t, wrapped, errors.ErrBadBootSector)
	assert.Equal(t, errors.KindOK, errors.KindOf(stderrors.New("plain")))
	assert.Equal(t, errors.KindOK, errors.KindOf(nil))
}

func TestStrErrorUnknownKind(t *testing.T) {
	assert.Equal(t, "Unknown error 9999", errors.StrError(errors.Kind(9999)))
	assert.Equal(t, "No such file", errors.KindNotFound.String())
}
