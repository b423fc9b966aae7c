// Package observability counts the backend calls for the heartbeat.
package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const recentCallsKept = 20

// RecentCall is one finished RPC.
type RecentCall struct {
	Method    string        `json:"method"`
	Code      string        `json:"code"`
	Duration  time.Duration `json:"duration"`
	Timestamp string        `json:"timestamp"`
}

// MonitoringStats is a snapshot of the counters.
type MonitoringStats struct {
	Calls       uint64       `json:"calls"`
	Errors      uint64       `json:"errors"`
	OpenStreams int64        `json:"open_streams"`
	AllocMemMb  uint64       `json:"alloc_mem_mb"`
	NumGC       uint32       `json:"num_gc"`
	RecentCalls []RecentCall `json:"recent_calls"`
}

// MonitoringManager records every RPC through its interceptors.
type MonitoringManager struct {
	log *slog.Logger
	now func() time.Time

	calls       atomic.Uint64
	errors      atomic.Uint64
	openStreams atomic.Int64

	mu     sync.Mutex
	recent []RecentCall
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, now: time.Now}
}

func (mm *MonitoringManager) Unary(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := mm.now()
	resp, err := handler(ctx, req)
	mm.record(info.FullMethod, start, err)
	return resp, err
}

func (mm *MonitoringManager) Stream(srv any, stream grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := mm.now()
	mm.openStreams.Add(1)
	defer mm.openStreams.Add(-1)
	err := handler(srv, stream)
	mm.record(info.FullMethod, start, err)
	return err
}

func (mm *MonitoringManager) record(method string, start time.Time, err error) {
	mm.calls.Add(1)
	code := status.Code(err)
	if err != nil {
		mm.errors.Add(1)
		mm.log.Debug("RPC failed", "method", method, "code", code.String())
	}
	call := RecentCall{
		Method:    method,
		Code:      code.String(),
		Duration:  mm.now().Sub(start),
		Timestamp: start.Format("15:04:05"),
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	// Newest first
	mm.recent = append([]RecentCall{call}, mm.recent...)
	if len(mm.recent) > recentCallsKept {
		mm.recent = mm.recent[:recentCallsKept]
	}
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	recent := append([]RecentCall(nil), mm.recent...)
	mm.mu.Unlock()

	return MonitoringStats{
		Calls:       mm.calls.Load(),
		Errors:      mm.errors.Load(),
		OpenStreams: mm.openStreams.Load(),
		AllocMemMb:  m.Alloc / 1024 / 1024,
		NumGC:       m.NumGC,
		RecentCalls: recent,
	}
}
