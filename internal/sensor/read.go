package sensor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Scalar lists the value types ReadValue can parse.
type Scalar interface {
	uint64 | int64 | float64
}

// ReadValue reads base/sub, trims surrounding whitespace and parses the text
// as T. An empty sub reads base itself. Failures are never retried.
func ReadValue[T Scalar](base, sub string) (T, error) {
	var zero T

	path := filepath.Join(base, sub)
	b, err := os.ReadFile(path)
	if err != nil {
		return zero, &ReadError{Path: path, Err: err}
	}

	text := strings.TrimSpace(string(b))
	v, err := parseScalar[T](text)
	if err != nil {
		return zero, &ParseError{Path: path, Text: text, Err: err}
	}
	return v, nil
}

func parseScalar[T Scalar](text string) (T, error) {
	var zero T
	var (
		v   any
		err error
	)
	switch any(zero).(type) {
	case uint64:
		v, err = strconv.ParseUint(text, 10, 64)
	case int64:
		v, err = strconv.ParseInt(text, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(text, 64)
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
