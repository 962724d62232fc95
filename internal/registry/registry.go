// Package registry holds a status copy of every sensor for reporting. It
// never references the sensors themselves; the scheduler pushes results in.
package registry

import (
	"sort"
	"sync"
	"time"

	"sysmon-mqtt/internal/sensor"
)

type Status struct {
	Name        string           `yaml:"name"         json:"name"`
	Kind        string           `yaml:"kind"         json:"kind"`
	Path        string           `yaml:"path"         json:"path"`
	Interval    time.Duration    `yaml:"interval"     json:"interval"`
	Registered  time.Time        `yaml:"-"            json:"registered"`
	LastPoll    time.Time        `yaml:"-"            json:"last_poll"`
	LastSuccess time.Time        `yaml:"-"            json:"last_success"`
	LastError   string           `yaml:"-"            json:"last_error,omitempty"`
	Readings    []sensor.Reading `yaml:"-"            json:"readings,omitempty"`
	Polls       uint64           `yaml:"-"            json:"polls"`
	Failures    uint64           `yaml:"-"            json:"failures"`
	Stale       bool             `yaml:"-"            json:"stale"`
}

type Store struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewStore() *Store {
	return &Store{data: map[string]Status{}}
}

// Register adds p, or resets an existing entry with the same name.
func (s *Store) Register(p sensor.Pollable, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[p.Name()] = Status{
		Name:       p.Name(),
		Kind:       p.Kind(),
		Path:       p.Path(),
		Interval:   p.Interval(),
		Registered: now,
	}
}

func (s *Store) Get(name string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// RecordPoll stores the result of a due poll. Not-due polls are not recorded.
func (s *Store) RecordPoll(name string, now time.Time, readings []sensor.Reading, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[name]
	if !ok {
		return
	}
	v.Polls++
	v.LastPoll = now
	if err != nil {
		v.Failures++
		v.LastError = err.Error()
	} else {
		v.LastSuccess = now
		v.LastError = ""
		if len(readings) > 0 {
			v.Readings = append([]sensor.Reading(nil), readings...)
		}
	}
	s.data[name] = v
}

func (s *Store) SetStale(name string, stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[name]
	if !ok {
		return
	}
	v.Stale = stale
	s.data[name] = v
}

// List returns all statuses sorted by name.
func (s *Store) List() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Status, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
