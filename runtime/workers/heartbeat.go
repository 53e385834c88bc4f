package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/contract"
	"chat-relay/observability"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker periodically logs engine counters together with the
// process's own resource usage (CPU, RSS, status).
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	presence   contract.IPresenceTable
	interval   time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	presence contract.IPresenceTable, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitoring: monitoring, presence: presence, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.Snapshot()
			w.log.Info("Heartbeat",
				"online", len(w.presence.OnlineIDs()),
				"dispatched", stats.MessagesDispatched,
				"notified", stats.NotificationsDelivered,
				"typing", stats.TypingRelayed,
				"drops", stats.DeliveryDrops,
				"persistence_failures", stats.PersistenceFailures,
				"rejected", stats.RejectedMessages,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"pid_status", status)
		}
	}
}

// getSelfStats retrieves technical metrics (memory, CPU and OS status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
