// Package imagefile reads and writes floppy images on disk, either raw or
// compressed. Compressed images are RLE8-encoded and then gzipped, which
// shrinks a mostly empty floppy to a few hundred bytes.
package imagefile

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

type Format int

const (
	Raw Format = iota
	Compressed
)

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case Compressed:
		return "compressed"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

var gzipMagic = []byte{0x1F, 0x8B}

// DetectFormat guesses the format of an image from its first bytes. A raw
// floppy starts with a jump instruction, never with the gzip magic.
func DetectFormat(contents []byte) Format {
	if bytes.HasPrefix(contents, gzipMagic) {
		return Compressed
	}
	return Raw
}

// Compress encodes a raw image in the compressed format.
func Compress(image []byte) ([]byte, error) {
	buffer := bytes.Buffer{}
	writer, err := gzip.NewWriterLevel(&buffer, gzip.BestCompression)
	if err != nil {
		return nil, err
	}

	_, err = EncodeRLE8(bytes.NewReader(image), writer)
	if err != nil {
		return nil, err
	}
	err = writer.Close()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Decompress expands a compressed image.
func Decompress(contents []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(contents))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	image := bytes.Buffer{}
	_, err = DecodeRLE8(reader, &image)
	if err != nil {
		return nil, err
	}
	return image.Bytes(), nil
}

// Read loads an image from `path`, expanding it if it's compressed.
func Read(fs afero.Fs, path string) ([]byte, Format, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, Raw, err
	}

	format := DetectFormat(contents)
	if format == Raw {
		return contents, Raw, nil
	}
	image, err := Decompress(contents)
	if err != nil {
		return nil, format, fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return image, format, nil
}

// Write saves an image to `path` in the given format.
func Write(fs afero.Fs, path string, image []byte, format Format) error {
	contents := image
	if format == Compressed {
		var err error
		contents, err = Compress(image)
		if err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, path, contents, os.FileMode(0o644))
}
