package fat12_test

import (
	"testing"

	"github.com/newcomb-luke/wustite/errors"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shortNameTest struct {
	Filename  string
	ShortName string
}

var shortNameTests = [...]shortNameTest{
	{Filename: "test.txt", ShortName: "TEST    TXT"},
	{Filename: "a", ShortName: "A          "},
	{Filename: "kernel.o", ShortName: "KERNEL  O  "},
	{Filename: "KERNEL.O", ShortName: "KERNEL  O  "},
	{Filename: "abcdefgh.ijk", ShortName: "ABCDEFGHIJK"},
	{Filename: "noext", ShortName: "NOEXT      "},
	{Filename: "trail.", ShortName: "TRAIL      "},
	{Filename: "x_1~2.b-", ShortName: "X_1~2   B- "},
}

func TestToShortName(t *testing.T) {
	for _, test := range shortNameTests {
		t.Run(test.Filename, func(t *testing.T) {
			shortName, err := fat12.ToShortName(test.Filename)
			require.NoError(t, err)
			assert.Equal(t, test.ShortName, string(shortName[:]))
		})
	}
}

func TestToShortNameInvalid(t *testing.T) {
	invalidNames := []string{
		"",
		"toolongname.txt",
		"verylongname",
		"name.text",
		".txt",
		"a.b.c",
		"sp ace.txt",
		"star*.txt",
		"ümlaut.o",
	}

	for _, name := range invalidNames {
		t.Run(name, func(t *testing.T) {
			_, err := fat12.ToShortName(name)
			assert.ErrorIs(t, err, errors.ErrInvalidName)
		})
	}
}

func TestFromShortName(t *testing.T) {
	for _, test := range shortNameTests {
		var shortName [fat12.ShortNameLength]byte
		copy(shortName[:], test.ShortName)

		roundTripped, err := fat12.ToShortName(fat12.FromShortName(shortName))
		require.NoError(t, err)
		assert.Equal(t, shortName, roundTripped)
	}

	var escaped [fat12.ShortNameLength]byte
	copy(escaped[:], "\x05BC     TXT")
	assert.Equal(t, "\xe5BC.TXT", fat12.FromShortName(escaped))
}
