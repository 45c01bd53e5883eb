package handoff_test

import (
	stderrors "errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/handoff"
	"github.com/newcomb-luke/wustite/mock_wustite"
	"github.com/stretchr/testify/assert"
)

func TestEnableA20AlreadyOn(t *testing.T) {
	ctrl := gomock.NewController(t)
	services := mock_wustite.NewMockMemoryServices(ctrl)
	services.EXPECT().A20Enabled().Return(true)

	assert.NoError(t, handoff.EnableA20(services))
}

func TestEnableA20ThroughFirmware(t *testing.T) {
	ctrl := gomock.NewController(t)
	services := mock_wustite.NewMockMemoryServices(ctrl)
	gomock.InOrder(
		services.EXPECT().A20Enabled().Return(false),
		services.EXPECT().EnableA20().Return(nil),
		services.EXPECT().A20Enabled().Return(true),
	)

	assert.NoError(t, handoff.EnableA20(services))
}

func TestEnableA20NoEffect(t *testing.T) {
	ctrl := gomock.NewController(t)
	services := mock_wustite.NewMockMemoryServices(ctrl)
	gomock.InOrder(
		services.EXPECT().A20Enabled().Return(false),
		services.EXPECT().EnableA20().Return(nil),
		services.EXPECT().A20Enabled().Return(false),
	)

	assert.ErrorIs(t, handoff.EnableA20(services), errors.ErrA20EnableFailed)
}

func TestEnableA20FirmwareError(t *testing.T) {
	ctrl := gomock.NewController(t)
	services := mock_wustite.NewMockMemoryServices(ctrl)
	cause := stderrors.New("function not supported")
	gomock.InOrder(
		services.EXPECT().A20Enabled().Return(false),
		services.EXPECT().EnableA20().Return(cause),
	)

	err := handoff.EnableA20(services)
	assert.ErrorIs(t, err, errors.ErrA20EnableFailed)
	assert.ErrorIs(t, err, cause)
}
