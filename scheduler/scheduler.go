// Package scheduler runs the periodic runtime snapshot job used for
// lightweight health monitoring: process statistics alongside the shutdown
// coordinator's request accounting.
package scheduler

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/quantalabs/analysis-api/logging"
	"github.com/quantalabs/analysis-api/shutdown"
)

// Monitor periodically logs process runtime statistics.
type Monitor struct {
	scheduler   *gocron.Scheduler
	coordinator *shutdown.Coordinator
	startedAt   time.Time
}

// NewMonitor creates a monitor observing the given coordinator.
func NewMonitor(coordinator *shutdown.Coordinator) *Monitor {
	return &Monitor{
		scheduler:   gocron.NewScheduler(time.UTC),
		coordinator: coordinator,
		startedAt:   time.Now(),
	}
}

// Start schedules the snapshot job.
func (m *Monitor) Start() error {
	_, err := m.scheduler.Every(30).Seconds().Do(m.logSnapshot)
	if err != nil {
		return fmt.Errorf("failed to schedule runtime snapshot: %w", err)
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (m *Monitor) Stop() {
	m.scheduler.Stop()
}

func (m *Monitor) logSnapshot() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	logging.Info("Runtime snapshot",
		"uptime", time.Since(m.startedAt).Round(time.Second).String(),
		"goroutines", runtime.NumGoroutine(),
		"heap_alloc_mb", mem.Alloc/1024/1024,
		"active_requests", m.coordinator.ActiveRequests(),
		"state", m.coordinator.CurrentState().String(),
	)
}
