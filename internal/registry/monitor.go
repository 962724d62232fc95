package registry

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// StartMonitoring flags sensors that have not produced a successful sample for
// factor times their interval. It only reports; polling is unaffected.
func (s *Store) StartMonitoring(ctx context.Context, clk clock.Clock, interval time.Duration, factor int, logger *zap.Logger) {
	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckSensors(clk.Now(), factor, logger)
		}
	}
}

// CheckSensors updates the stale flag of every sensor and logs changes.
func (s *Store) CheckSensors(now time.Time, factor int, logger *zap.Logger) {
	for _, st := range s.List() {
		ref := st.LastSuccess
		if ref.IsZero() {
			ref = st.Registered
		}
		stale := now.Sub(ref) > time.Duration(factor)*st.Interval

		if st.Stale != stale {
			s.SetStale(st.Name, stale)
			if stale {
				logger.Warn("sensor stale", zap.String("sensor", st.Name), zap.Time("last_success", st.LastSuccess), zap.String("last_error", st.LastError))
			} else {
				logger.Info("sensor recovered", zap.String("sensor", st.Name))
			}
		}
	}
}
