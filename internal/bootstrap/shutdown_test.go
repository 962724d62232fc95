package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/config"
	"sysmon-mqtt/internal/publish"
	"sysmon-mqtt/internal/sensor"
)

// slowSink holds every publish for delay and ignores ctx, like a broker
// waiting on an acknowledgement.
type slowSink struct {
	delay   time.Duration
	started chan struct{}
	once    sync.Once

	mu               sync.Mutex
	inFlight         bool
	closed           bool
	closedMidPublish bool
}

func (s *slowSink) Publish(_ context.Context, _ publish.Message) error {
	s.mu.Lock()
	s.inFlight = true
	s.mu.Unlock()
	s.once.Do(func() { close(s.started) })

	time.Sleep(s.delay)

	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
	return nil
}

func (s *slowSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.inFlight {
		s.closedMidPublish = true
	}
	return nil
}

func TestRunAllClosesSinkAfterSchedulerStops(t *testing.T) {
	zone := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(zone, sensor.TempFile), []byte("45230\n"), 0o644))

	sink := &slowSink{delay: 200 * time.Millisecond, started: make(chan struct{})}
	sinkFactories["slow"] = func(*config.Config, *zap.Logger) (publish.Sink, error) { return sink, nil }
	t.Cleanup(func() { delete(sinkFactories, "slow") })

	cfg := config.Defaults()
	cfg.Sink = "slow"
	cfg.BaseTopic = "home/pi"
	cfg.Sensors.Temp.Paths = []string{zone}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- RunAll(ctx, cfg, zap.NewNop()) }()

	select {
	case <-sink.started:
	case <-time.After(2 * time.Second):
		t.Fatal("no publish started")
	}
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("RunAll did not return after cancel")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.True(t, sink.closed)
	assert.False(t, sink.closedMidPublish)
}
