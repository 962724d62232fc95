package sensor

import (
	"errors"
	"fmt"
)

var (
	// ErrRead matches every ReadError.
	ErrRead = errors.New("sensor read failed")
	// ErrParse matches every ParseError.
	ErrParse = errors.New("sensor value parse failed")
	// ErrConfiguration is returned at startup for sensors that can never be polled.
	ErrConfiguration = errors.New("invalid sensor configuration")
)

// ReadError reports a file that could not be opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// ParseError reports file content that is not valid for the requested type.
type ParseError struct {
	Path string
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%q): %v", e.Path, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
