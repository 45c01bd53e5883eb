package imagefile

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
)

// maxRunLength is the longest run one RLE8 group can describe: the byte twice
// plus up to 255 more.
const maxRunLength = 257

// byteRun is a run of one byte value. length is always at least 1.
type byteRun struct {
	value  byte
	length int
}

type runScanner struct {
	source *bufio.Reader
}

// next returns the next run in the stream. At the end of the stream it returns
// io.EOF and a zero-length run.
func (s runScanner) next() (byteRun, error) {
	first, err := s.source.ReadByte()
	if err != nil {
		return byteRun{}, err
	}

	run := byteRun{value: first, length: 1}
	for {
		current, err := s.source.ReadByte()
		if stderrors.Is(err, io.EOF) {
			return run, nil
		}
		if err != nil {
			return byteRun{}, err
		}
		if current != first {
			s.source.UnreadByte()
			return run, nil
		}
		run.length++
	}
}

// EncodeRLE8 run-length encodes `input`: a byte that occurs two or more times
// in a row is written twice followed by the number of additional repeats. It
// returns the number of bytes written.
func EncodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	scanner := runScanner{source: bufio.NewReader(input)}
	written := int64(0)

	for {
		run, err := scanner.next()
		if stderrors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}

		for run.length >= 2 {
			group := min(run.length, maxRunLength)
			n, err := output.Write([]byte{run.value, run.value, byte(group - 2)})
			written += int64(n)
			if err != nil {
				return written, err
			}
			run.length -= group
		}
		if run.length == 1 {
			n, err := output.Write([]byte{run.value})
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
}

// DecodeRLE8 reverses EncodeRLE8 and returns the number of bytes written.
func DecodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previous := -1
	written := int64(0)

	for {
		current, err := source.ReadByte()
		if stderrors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("error reading input: %w", err)
		}

		var chunk []byte
		if int(current) == previous {
			repeats, err := source.ReadByte()
			if stderrors.Is(err, io.EOF) {
				err = fmt.Errorf(
					"%w: missing repeat count after two %02x bytes", io.ErrUnexpectedEOF, current)
			}
			if err != nil {
				return written, err
			}
			// The first of the pair was already written.
			chunk = bytes.Repeat([]byte{current}, int(repeats)+1)
			previous = -1
		} else {
			chunk = []byte{current}
			previous = int(current)
		}

		n, err := output.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}
