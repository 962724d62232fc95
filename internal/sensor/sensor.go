// Package sensor implements file-backed sensors polled on a fixed interval.
//
// A Sensor binds a filesystem path, an interval and the last successful sample
// to a Kind. The Kind's Handler turns the current file contents (and the
// previous sample, if any) into a new raw value plus zero or more readings.
// Sensors of any raw value type are driven through the Pollable interface.
package sensor

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
)

// Sample is a raw value together with the monotonic time it was observed.
type Sample[V any] struct {
	Value      V
	ObservedAt time.Time
}

// Reading is one publishable unit. Suffix is appended to the sensor topic.
type Reading struct {
	Suffix  string `json:"suffix"`
	Payload string `json:"payload"`
}

// State is the read-only view a Handler gets of its sensor. Now is the
// timestamp that will be stored with the returned value.
type State[V any] struct {
	Path string
	Last *Sample[V]
	Now  time.Time
}

// Handler reads a sensor of raw type V.
type Handler[V any] interface {
	Read(st State[V]) (V, []Reading, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc[V any] func(st State[V]) (V, []Reading, error)

func (f HandlerFunc[V]) Read(st State[V]) (V, []Reading, error) { return f(st) }

// Kind is a sensor kind: a topic prefix and the stateless handler shared by
// every sensor of that kind.
type Kind[V any] struct {
	Prefix  string
	Handler Handler[V]
}

// Outcome is the result of a successful Poll. Due reports whether the handler
// ran; NextDueIn is the wait until the sensor should be polled again.
type Outcome struct {
	Due       bool
	Readings  []Reading
	NextDueIn time.Duration
}

// Pollable is the type-erased view of a Sensor used by the scheduler.
type Pollable interface {
	Name() string
	Kind() string
	Path() string
	Interval() time.Duration
	Poll() (Outcome, error)
}

// Sensor is a polled sensor with raw value type V.
type Sensor[V any] struct {
	name     string
	kind     string
	path     string
	interval time.Duration
	last     *Sample[V]
	handler  Handler[V]
	clock    clock.Clock
}

// New builds a sensor named "<kind prefix>/<leaf of path>". A nil clk uses the
// wall clock, whose readings carry the monotonic component.
func New[V any](path string, interval time.Duration, kind Kind[V], clk clock.Clock) (*Sensor[V], error) {
	leaf, err := leafName(path)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %s", ErrConfiguration, interval)
	}
	if kind.Handler == nil {
		return nil, fmt.Errorf("%w: kind %q has no handler", ErrConfiguration, kind.Prefix)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Sensor[V]{
		name:     kind.Prefix + "/" + leaf,
		kind:     kind.Prefix,
		path:     path,
		interval: interval,
		handler:  kind.Handler,
		clock:    clk,
	}, nil
}

func leafName(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrConfiguration)
	}
	leaf := filepath.Base(filepath.Clean(path))
	switch leaf {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("%w: invalid path %q", ErrConfiguration, path)
	}
	return leaf, nil
}

func (s *Sensor[V]) Name() string            { return s.name }
func (s *Sensor[V]) Kind() string            { return s.kind }
func (s *Sensor[V]) Path() string            { return s.path }
func (s *Sensor[V]) Interval() time.Duration { return s.interval }

// Last returns the last successful sample.
func (s *Sensor[V]) Last() (Sample[V], bool) {
	if s.last == nil {
		return Sample[V]{}, false
	}
	return *s.last, true
}

// Poll runs the handler if the sensor is due. A sensor that was never sampled
// is always due. On handler failure the previous sample is kept, so the sensor
// stays due for the next call.
func (s *Sensor[V]) Poll() (Outcome, error) {
	now := s.clock.Now()

	var prev *Sample[V]
	if s.last != nil {
		elapsed := now.Sub(s.last.ObservedAt)
		if elapsed < s.interval {
			return Outcome{NextDueIn: s.interval - elapsed}, nil
		}
		cp := *s.last
		prev = &cp
	}

	val, readings, err := s.handler.Read(State[V]{Path: s.path, Last: prev, Now: now})
	if err != nil {
		return Outcome{}, err
	}
	s.last = &Sample[V]{Value: val, ObservedAt: now}
	return Outcome{Due: true, Readings: readings, NextDueIn: s.interval}, nil
}
