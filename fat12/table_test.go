package fat12_test

import (
	"fmt"
	"testing"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/newcomb-luke/wustite/fatimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEntryParity(t *testing.T) {
	table := []byte{0x34, 0x12, 0xAB}

	even, err := fat12.DecodeEntry(table, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0x234, even)

	odd, err := fat12.DecodeEntry(table, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0xAB1, odd)
}

func TestDecodeEntryPastEnd(t *testing.T) {
	_, err := fat12.DecodeEntry([]byte{0x34, 0x12, 0xAB}, 2)
	assert.ErrorIs(t, err, errors.ErrCorruptClusterChain)
}

func TestSetEntryRoundTrip(t *testing.T) {
	table := make([]byte, 48)
	values := make([]fat12.ClusterID, 32)
	for i := range values {
		values[i] = fat12.ClusterID((i*0x155 + 0x0A3) & 0xFFF)
		fatimage.SetEntry(table, fat12.ClusterID(i), values[i])
	}

	for i, expected := range values {
		t.Run(fmt.Sprintf("cluster %d", i), func(t *testing.T) {
			actual, err := fat12.DecodeEntry(table, fat12.ClusterID(i))
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
		})
	}
}

func TestIsEndOfChain(t *testing.T) {
	assert.False(t, fat12.IsEndOfChain(0xFF7))
	assert.True(t, fat12.IsEndOfChain(0xFF8))
	assert.True(t, fat12.IsEndOfChain(0xFFF))
}
