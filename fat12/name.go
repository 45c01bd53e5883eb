package fat12

import (
	"fmt"
	"strings"

	"github.com/newcomb-luke/wustite/errors"
)

// ShortNameLength is the width of the name field in a directory entry: eight
// bytes of name and three of extension, without the dot.
const ShortNameLength = 11

const (
	maxStemLength      = 8
	maxExtensionLength = 3
	maxNameLength      = maxStemLength + 1 + maxExtensionLength
)

// Characters FAT forbids in short names, in addition to controls and space.
const illegalShortNameChars = "\"*+,./:;<=>?[\\]|"

// ToShortName converts a file name like "kernel.o" into the space-padded,
// upper-case form stored on disk, "KERNEL  O  ". The name is split on its last
// dot; without a dot the whole name is the stem.
func ToShortName(name string) ([ShortNameLength]byte, error) {
	var shortName [ShortNameLength]byte

	if len(name) == 0 || len(name) > maxNameLength {
		message := fmt.Sprintf(
			"%q must be between 1 and %d characters long", name, maxNameLength)
		return shortName, errors.ErrInvalidName.WithMessage(message)
	}

	stem := name
	extension := ""
	lastDot := strings.LastIndexByte(name, '.')
	if lastDot >= 0 {
		stem = name[:lastDot]
		extension = name[lastDot+1:]
	}

	if len(stem) == 0 || len(stem) > maxStemLength {
		message := fmt.Sprintf(
			"name part of %q must be between 1 and %d characters long", name, maxStemLength)
		return shortName, errors.ErrInvalidName.WithMessage(message)
	}
	if len(extension) > maxExtensionLength {
		message := fmt.Sprintf(
			"extension of %q can't be longer than %d characters", name, maxExtensionLength)
		return shortName, errors.ErrInvalidName.WithMessage(message)
	}

	for i := range shortName {
		shortName[i] = ' '
	}
	for i := 0; i < len(stem); i++ {
		if !isShortNameChar(stem[i]) {
			return shortName, illegalCharError(name, stem[i])
		}
		shortName[i] = toUpper(stem[i])
	}
	for i := 0; i < len(extension); i++ {
		if !isShortNameChar(extension[i]) {
			return shortName, illegalCharError(name, extension[i])
		}
		shortName[maxStemLength+i] = toUpper(extension[i])
	}
	return shortName, nil
}

// FromShortName is the inverse of ToShortName, except that the result keeps
// the on-disk upper case.
func FromShortName(shortName [ShortNameLength]byte) string {
	stem := []byte(strings.TrimRight(string(shortName[:maxStemLength]), " "))
	extension := strings.TrimRight(string(shortName[maxStemLength:]), " ")

	if len(stem) > 0 && stem[0] == direntEscapedE5 {
		stem[0] = direntDeleted
	}
	if extension == "" {
		return string(stem)
	}
	return string(stem) + "." + extension
}

func isShortNameChar(c byte) bool {
	return c > ' ' && c < 0x7F && strings.IndexByte(illegalShortNameChars, c) < 0
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func illegalCharError(name string, c byte) error {
	message := fmt.Sprintf("%q contains illegal character %q", name, c)
	return errors.ErrInvalidName.WithMessage(message)
}
