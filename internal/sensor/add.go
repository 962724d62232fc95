package sensor

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Add builds one sensor of kind per path and appends it to into, in order.
// The first invalid path aborts with an ErrConfiguration error.
func Add[V any](into []Pollable, paths []string, interval time.Duration, kind Kind[V], clk clock.Clock, logger *zap.Logger) ([]Pollable, error) {
	for _, path := range paths {
		s, err := New(path, interval, kind, clk)
		if err != nil {
			return into, fmt.Errorf("failed to parse sensor %q: %w", path, err)
		}
		logger.Info("added sensor", zap.String("sensor", s.Name()), zap.String("path", path), zap.Duration("interval", interval))
		into = append(into, s)
	}
	return into, nil
}
