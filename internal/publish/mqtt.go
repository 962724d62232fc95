package publish

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/config"
)

// MQTTSink publishes through a paho client. Reconnection is left to paho.
type MQTTSink struct {
	client  mqtt.Client
	timeout time.Duration
	log     *zap.Logger
}

// BrokerURL is a broker address split into the parts paho takes separately.
type BrokerURL struct {
	Server   string
	Username string
	Password string
	ClientID string
}

// ParseBrokerURL accepts scheme://[user[:pass]@]host[:port][?client_id=id].
func ParseBrokerURL(raw string) (BrokerURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BrokerURL{}, fmt.Errorf("broker url: %w", err)
	}
	switch u.Scheme {
	case "tcp", "mqtt", "ssl", "tls", "mqtts", "ws", "wss":
	default:
		return BrokerURL{}, fmt.Errorf("broker url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return BrokerURL{}, fmt.Errorf("broker url %q: missing host", raw)
	}

	var b BrokerURL
	if u.User != nil {
		b.Username = u.User.Username()
		b.Password, _ = u.User.Password()
	}
	b.ClientID = u.Query().Get("client_id")

	u.User = nil
	u.RawQuery = ""
	b.Server = u.String()
	return b, nil
}

// ClientOptions merges the broker URL with explicit settings, which win.
// Without any client id a random "sysmon-<uuid>" is used.
func ClientOptions(cfg config.MQTTConfig, logger *zap.Logger) (*mqtt.ClientOptions, error) {
	b, err := ParseBrokerURL(cfg.Broker)
	if err != nil {
		return nil, err
	}
	if cfg.Username != "" {
		b.Username, b.Password = cfg.Username, cfg.Password
	}
	if cfg.ClientID != "" {
		b.ClientID = cfg.ClientID
	}
	if b.ClientID == "" {
		b.ClientID = "sysmon-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(b.Server).
		SetClientID(b.ClientID).
		SetUsername(b.Username).
		SetPassword(b.Password).
		SetKeepAlive(cfg.KeepAlive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("connected to broker", zap.String("broker", b.Server), zap.String("client_id", b.ClientID))
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Error("connection lost", zap.String("broker", b.Server), zap.Error(err))
		})
	return opts, nil
}

// NewMQTT connects to the broker. An unreachable broker is not fatal: paho
// keeps retrying in the background and publishes fail until it is up.
func NewMQTT(cfg config.MQTTConfig, logger *zap.Logger) (*MQTTSink, error) {
	opts, err := ClientOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(cfg.ConnectTimeout) {
		logger.Warn("broker not reachable yet, retrying in background", zap.String("broker", cfg.Broker))
	} else if err := tok.Error(); err != nil {
		logger.Error("connection error", zap.Error(err))
	}
	return NewMQTTWithClient(c, cfg.PublishTimeout, logger), nil
}

// NewMQTTWithClient wraps an existing client.
func NewMQTTWithClient(c mqtt.Client, timeout time.Duration, logger *zap.Logger) *MQTTSink {
	return &MQTTSink{client: c, timeout: timeout, log: logger}
}

func (s *MQTTSink) Publish(ctx context.Context, msg Message) error {
	tok := s.client.Publish(msg.Topic, byte(msg.QoS), msg.Retained, msg.Payload)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
	case <-ctx.Done():
		return &DeliveryError{Topic: msg.Topic, Err: ctx.Err()}
	case <-timer.C:
		return &DeliveryError{Topic: msg.Topic, Err: ErrTimeout}
	}
	if err := tok.Error(); err != nil {
		return &DeliveryError{Topic: msg.Topic, Err: err}
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	s.log.Info("disconnected from broker")
	return nil
}
