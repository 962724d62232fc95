// Package events keeps a bounded history of publish attempts.
package events

import (
	"sync"
	"time"
)

type Event struct {
	Sensor  string    `json:"sensor"`
	Topic   string    `json:"topic"`
	Payload string    `json:"payload"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

type Buffer interface {
	Push(e Event)
	Pull(after time.Time, max int) []Event
}

type ring struct {
	mu   sync.RWMutex
	data []Event
	size int
}

// NewRing keeps the newest size events. Sizes below 1 are treated as 1.
func NewRing(size int) Buffer {
	if size < 1 {
		size = 1
	}
	return &ring{data: make([]Event, 0, size), size: size}
}

func (r *ring) Push(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.data) == r.size {
		r.data = r.data[1:]
	}
	r.data = append(r.data, e)
}

// Pull returns up to max of the newest events after the given time, oldest first.
func (r *ring) Pull(after time.Time, max int) []Event {
	if max <= 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0, max)
	for i := len(r.data) - 1; i >= 0 && len(out) < max; i-- {
		if r.data[i].Time.After(after) {
			out = append(out, r.data[i])
		}
	}
	for l, rgt := 0, len(out)-1; l < rgt; l, rgt = l+1, rgt-1 {
		out[l], out[rgt] = out[rgt], out[l]
	}
	return out
}
