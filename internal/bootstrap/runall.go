package bootstrap

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/config"
	"sysmon-mqtt/internal/events"
	"sysmon-mqtt/internal/poller"
	"sysmon-mqtt/internal/publish"
	"sysmon-mqtt/internal/registry"
	"sysmon-mqtt/internal/sensor"
	"sysmon-mqtt/internal/web"
)

const eventHistory = 256

// SinkFactory builds the publisher named by config.Config.Sink.
type SinkFactory func(cfg *config.Config, logger *zap.Logger) (publish.Sink, error)

var sinkFactories = map[string]SinkFactory{
	config.SinkMQTT: func(cfg *config.Config, logger *zap.Logger) (publish.Sink, error) {
		return publish.NewMQTT(cfg.MQTT, logger.Named("mqtt"))
	},
	config.SinkKafka: func(cfg *config.Config, logger *zap.Logger) (publish.Sink, error) {
		return publish.NewKafka(cfg.Kafka, logger.Named("kafka"))
	},
}

// BuildSensors creates the temperature sensors followed by the network
// sensors. Zero sensors is a configuration error.
func BuildSensors(cfg *config.Config, clk clock.Clock, logger *zap.Logger) ([]sensor.Pollable, error) {
	var sensors []sensor.Pollable
	sensors, err := sensor.Add(sensors, cfg.Sensors.Temp.Paths, cfg.Sensors.Temp.Interval, sensor.Temperature, clk, logger)
	if err != nil {
		return nil, err
	}
	sensors, err = sensor.Add(sensors, cfg.Sensors.Net.Paths, cfg.Sensors.Net.Interval, sensor.Network, clk, logger)
	if err != nil {
		return nil, err
	}
	if len(sensors) == 0 {
		return nil, fmt.Errorf("%w: no sensors defined", sensor.ErrConfiguration)
	}
	return sensors, nil
}

// NewSink looks up the configured sink factory.
func NewSink(cfg *config.Config, logger *zap.Logger) (publish.Sink, error) {
	f, ok := sinkFactories[cfg.Sink]
	if !ok {
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
	return f(cfg, logger)
}

// RunAll builds every component from cfg and runs until ctx is canceled or a
// component fails. Configuration problems are returned before anything starts.
func RunAll(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	clk := clock.New()

	sensors, err := BuildSensors(cfg, clk, logger)
	if err != nil {
		return err
	}
	logger.Info("starting", zap.Int("sensors", len(sensors)), zap.String("sink", cfg.Sink), zap.String("base_topic", cfg.BaseTopic))

	status := registry.NewStore()
	for _, s := range sensors {
		status.Register(s, clk.Now())
	}
	evbuf := events.NewRing(eventHistory)

	sink, err := NewSink(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("sink close", zap.Error(err))
		}
	}()

	sched, err := poller.New(sensors, poller.Params{
		BaseTopic: cfg.BaseTopic,
		Sink:      sink,
		Logger:    logger.Named("poller"),
		Clock:     clk,
		Status:    status,
		Events:    evbuf,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	if cfg.Web.Addr != "" {
		srv := web.New(cfg.Web, status, evbuf, logger.Named("web"))
		go func() {
			if err := srv.Start(ctx); err != nil {
				errCh <- fmt.Errorf("status api: %w", err)
			}
		}()
	} else {
		logger.Info("status api disabled")
	}

	go status.StartMonitoring(ctx, clk, cfg.Monitor.Interval, cfg.Monitor.StaleFactor, logger.Named("monitor"))

	schedDone := make(chan error, 1)
	go func() {
		schedDone <- sched.Run(ctx)
	}()

	// The sink is closed by the deferred call above, so the scheduler must
	// have left its current cycle before RunAll returns.
	select {
	case err = <-schedDone:
		return err
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}
	cancel()
	<-schedDone
	return err
}
