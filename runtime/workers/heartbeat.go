package workers

import (
	"context"
	"groupchat/contract"
	"groupchat/observability"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Heartbeat periodically logs the backend's own health: memory, cpu,
// goroutines, live realtime subscribers and rpc counters.
type Heartbeat struct {
	log      *slog.Logger
	registry contract.IRegistry
	monitor  *observability.MonitoringManager
	interval time.Duration
}

// NewHeartbeat logs no rpc counters when monitor is nil.
func NewHeartbeat(log *slog.Logger, registry contract.IRegistry,
	monitor *observability.MonitoringManager, interval time.Duration) *Heartbeat {
	return &Heartbeat{log: log, registry: registry, monitor: monitor, interval: interval}
}

func (w *Heartbeat) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			memInfo, err := p.MemoryInfoWithContext(ctx)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			cpu, err := p.CPUPercentWithContext(ctx)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			attrs := []any{
				"rss_bytes", memInfo.RSS,
				"cpu_percent", cpu,
				"goroutines", runtime.NumGoroutine(),
				"subscribers", w.registry.Count(),
			}
			if w.monitor != nil {
				stats := w.monitor.GetLatest()
				attrs = append(attrs, "rpc_calls", stats.Calls, "rpc_errors", stats.Errors,
					"open_streams", stats.OpenStreams)
			}
			w.log.Info("Heartbeat", attrs...)
		}
	}
}
