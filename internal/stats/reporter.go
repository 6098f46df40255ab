// Package stats runs a periodic, read-only reporter over a device's pool
// utilization, scheduled with gocron the way cc-backend schedules its
// background maintenance tasks.
package stats

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"buddyd/internal/devlog"
	"buddyd/internal/metrics"
	"buddyd/pkg/device"
)

// Reporter wraps a gocron scheduler running one recurring job.
type Reporter struct {
	sched gocron.Scheduler
}

// Start begins logging dev's pool utilization every interval. Interval <=
// 0 disables the reporter and Start returns a nil *Reporter.
func Start(dev *device.Device, interval time.Duration) (*Reporter, error) {
	if interval <= 0 {
		return nil, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			report(dev)
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return &Reporter{sched: sched}, nil
}

func report(dev *device.Device) {
	s := dev.Stats()
	metrics.ObserveStats(s.AllocatedBytes, s.FreeBytes, s.LargestFree)
	devlog.Infof("stats: allocated=%dB free=%dB largest_free=%dB", s.AllocatedBytes, s.FreeBytes, s.LargestFree)
}

// Stop cancels the scheduled job and releases scheduler resources.
func (r *Reporter) Stop() error {
	if r == nil || r.sched == nil {
		return nil
	}
	return r.sched.Shutdown()
}
