// Package batch runs a per-file workflow over many inputs one at a time,
// isolating each file's failure from its siblings.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Source is one named input of a batch.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type fileSource string

// File returns a Source reading the file at path.
func File(path string) Source { return fileSource(path) }

func (f fileSource) Name() string                 { return filepath.Base(string(f)) }
func (f fileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

type bytesSource struct {
	name string
	data []byte
}

// Bytes returns a Source over an in-memory upload.
func Bytes(name string, data []byte) Source { return bytesSource{name: name, data: data} }

func (b bytesSource) Name() string { return b.name }
func (b bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Opener adapts anything with an Open method, such as an uploaded
// multipart.FileHeader, into a Source.
type Opener[R io.ReadCloser] struct {
	FileName string
	OpenFunc func() (R, error)
}

func (o Opener[R]) Name() string { return o.FileName }
func (o Opener[R]) Open() (io.ReadCloser, error) {
	r, err := o.OpenFunc()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ReadError reports an I/O failure on one input.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Name, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// ReadAll reads a source fully, wrapping failures in ReadError.
func ReadAll(src Source) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, &ReadError{Name: src.Name(), Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ReadError{Name: src.Name(), Err: err}
	}
	return data, nil
}

// Outcome is the result of one file in a batch.
type Outcome struct {
	Name string
	Err  error
}

// Run reads each source in order and hands its content to fn. An error from
// one file is recorded in its Outcome and the loop moves on.
func Run(logger zerolog.Logger, sources []Source, fn func(name string, data []byte) error) []Outcome {
	start := time.Now()
	outcomes := make([]Outcome, 0, len(sources))
	failed := 0
	for i, src := range sources {
		data, err := ReadAll(src)
		if err == nil {
			err = fn(src.Name(), data)
		}
		outcomes = append(outcomes, Outcome{Name: src.Name(), Err: err})

		var ev *zerolog.Event
		if err != nil {
			failed++
			ev = logger.Warn().Err(err)
		} else {
			ev = logger.Info()
		}
		ev.Str("file", src.Name()).
			Int("done", i+1).
			Int("total", len(sources)).
			Msg("processed file")
	}
	logger.Info().
		Int("succeeded", len(sources)-failed).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return outcomes
}

// IsReadError reports whether err came from reading the input.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}
