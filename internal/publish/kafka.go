package publish

import (
	"context"
	"errors"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/config"
)

// messageWriter is the subset of kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes every reading to one Kafka topic, keyed by the MQTT-style
// topic. On a compacted topic the latest message per key plays the role of an
// MQTT retained message.
type KafkaSink struct {
	w   messageWriter
	log *zap.Logger
}

func NewKafka(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	logger.Info("kafka writer ready", zap.String("topic", cfg.Topic), zap.Strings("brokers", cfg.Brokers))
	return &KafkaSink{w: w, log: logger}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, msg Message) error {
	km := kafka.Message{
		Key:   []byte(msg.Topic),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "retained", Value: []byte(strconv.FormatBool(msg.Retained))},
			{Key: "qos", Value: []byte(strconv.Itoa(int(msg.QoS)))},
		},
	}
	if err := s.w.WriteMessages(ctx, km); err != nil {
		return &DeliveryError{Topic: msg.Topic, Err: err}
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}
