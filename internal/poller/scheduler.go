// Package poller drives every sensor from one sequential loop. Each cycle polls
// the sensors in order, publishes what the due ones produced, then sleeps until
// the soonest sensor is due again.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/events"
	"sysmon-mqtt/internal/publish"
	"sysmon-mqtt/internal/registry"
	"sysmon-mqtt/internal/sensor"
)

// MaxSleep caps the time between two cycles.
const MaxSleep = 60 * time.Second

// Params configures a Scheduler. Status and Events are optional.
type Params struct {
	BaseTopic string
	Sink      publish.Sink
	Logger    *zap.Logger
	Clock     clock.Clock
	Status    *registry.Store
	Events    events.Buffer
}

type Scheduler struct {
	sensors []sensor.Pollable
	p       Params
}

// New takes ownership of sensors. An empty set is a configuration error.
func New(sensors []sensor.Pollable, p Params) (*Scheduler, error) {
	if len(sensors) == 0 {
		return nil, fmt.Errorf("%w: no sensors defined", sensor.ErrConfiguration)
	}
	if p.Sink == nil {
		return nil, errors.New("poller: nil sink")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	return &Scheduler{sensors: sensors, p: p}, nil
}

// Run repeats Cycle until ctx is canceled. Cancellation is only observed
// between cycles and during publishes.
func (s *Scheduler) Run(ctx context.Context) error {
	s.p.Logger.Info("starting poller", zap.Int("sensors", len(s.sensors)))
	for {
		next := s.Cycle(ctx)

		timer := s.p.Clock.Timer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Cycle polls every sensor once and returns how long to sleep before the next
// cycle: the smallest wait reported by any sensor, at most MaxSleep. Failed
// sensors do not affect the result.
func (s *Scheduler) Cycle(ctx context.Context) time.Duration {
	next := MaxSleep

	for _, sn := range s.sensors {
		name := sn.Name()
		out, err := sn.Poll()
		if err != nil {
			s.p.Logger.Error("sensor error", zap.String("sensor", name), zap.Error(err))
			s.record(name, nil, err)
			continue
		}

		if out.Due {
			s.record(name, out.Readings, nil)
			for _, r := range out.Readings {
				s.publish(ctx, name, r)
			}
		} else {
			s.p.Logger.Debug("sensor skip", zap.String("sensor", name), zap.Duration("delay", out.NextDueIn))
		}

		if out.NextDueIn < next {
			next = out.NextDueIn
		}
	}

	return next
}

// Topic returns the full topic of a reading from the named sensor.
func (s *Scheduler) Topic(name string, r sensor.Reading) string {
	return s.p.BaseTopic + "/" + name + r.Suffix
}

func (s *Scheduler) publish(ctx context.Context, name string, r sensor.Reading) {
	topic := s.Topic(name, r)
	s.p.Logger.Info("sensor send", zap.String("sensor", name), zap.String("topic", topic), zap.String("data", r.Payload))

	err := s.p.Sink.Publish(ctx, publish.Message{
		Topic:    topic,
		Payload:  []byte(r.Payload),
		Retained: true,
		QoS:      publish.AtLeastOnce,
	})
	if err != nil {
		s.p.Logger.Error("publish failed", zap.String("sensor", name), zap.String("topic", topic), zap.Error(err))
	}

	if s.p.Events != nil {
		ev := events.Event{Sensor: name, Topic: topic, Payload: r.Payload, Time: s.p.Clock.Now()}
		if err != nil {
			ev.Error = err.Error()
		}
		s.p.Events.Push(ev)
	}
}

func (s *Scheduler) record(name string, readings []sensor.Reading, err error) {
	if s.p.Status != nil {
		s.p.Status.RecordPoll(name, s.p.Clock.Now(), readings, err)
	}
}
