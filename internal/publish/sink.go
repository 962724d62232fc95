// Package publish delivers readings to a message broker.
package publish

import (
	"context"
	"errors"
	"fmt"
)

// QoS is the MQTT delivery guarantee; other sinks map it as closely as they can.
type QoS byte

const (
	AtMostOnce QoS = iota
	AtLeastOnce
	ExactlyOnce
)

var (
	// ErrDelivery matches every DeliveryError.
	ErrDelivery = errors.New("delivery failed")
	// ErrTimeout is the cause of a DeliveryError when the broker did not
	// acknowledge in time.
	ErrTimeout = errors.New("publish timed out")
)

type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
	QoS      QoS
}

// Sink delivers one message per call and does not retry.
type Sink interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// DeliveryError reports a single failed publish attempt.
type DeliveryError struct {
	Topic string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Topic, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }
