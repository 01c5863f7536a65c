package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"connectrix/contract"
	"connectrix/observability"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// Gauges reports the registry-owned values the monitor cannot read itself.
type Gauges interface {
	SessionCount() int
	RoomCount() int
}

// HealthMonitoringWorker samples process metrics on a fixed interval and
// pushes a fresh snapshot into the monitoring manager.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	monitor        *observability.Manager
	gauges         Gauges
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, monitor *observability.Manager,
	gauges Gauges, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		monitor:        monitor,
		gauges:         gauges,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process handle unavailable, CPU metric disabled", "error", err)
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			var cpuPercent float64
			if proc != nil {
				if pct, err := proc.CPUPercent(); err == nil {
					cpuPercent = pct
				}
			}
			w.monitor.Update(w.gauges.SessionCount(), w.gauges.RoomCount(), cpuPercent)
		}
	}
}
