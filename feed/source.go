package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// Source is an ordered stream of command lines.
type Source interface {
	// Next returns the next line of the stream.
	// It returns io.EOF when the stream is over.
	Next(ctx context.Context) (string, error)
}

// MaxLineSize is the maximum length of a line LineSource delivers.
const MaxLineSize = 64 * 1024

// ErrLineTooLong is returned by LineSource for lines longer than
// MaxLineSize. The line is consumed, so the next call continues with the line
// after it.
var ErrLineTooLong = errors.New("feed: line too long")

// LineSource reads newline separated commands from an io.Reader.
type LineSource struct {
	reader *bufio.Reader
}

// NewLineSource creates a LineSource reading from r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{
		reader: bufio.NewReader(r),
	}
}

// Next implements Source.
// Note that context is checked before reading only; a blocked read is not
// interrupted.
func (s *LineSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		line []byte
		size int
	)
	for {
		chunk, more, err := s.reader.ReadLine()
		if err == io.EOF && size > 0 {
			break
		}
		if err != nil {
			return "", err
		}
		size += len(chunk)
		if size <= MaxLineSize {
			line = append(line, chunk...)
		}
		if !more {
			break
		}
	}
	if size > MaxLineSize {
		return "", fmt.Errorf("%w: %d bytes", ErrLineTooLong, size)
	}
	return string(line), nil
}
