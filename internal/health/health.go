package health

import (
	"context"
	"runtime"
	"time"

	"catering-backend/internal/timeutil"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db        Pinger
	cacheUp   func(ctx context.Context) bool
	startedAt time.Time
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Cache    ComponentHealth `json:"cache"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds host resource usage to the readiness result.
type DetailedStatus struct {
	HealthStatus
	Uptime        string  `json:"uptime"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    uint64  `json:"memory_used_bytes"`
	MemoryTotal   uint64  `json:"memory_total_bytes"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      uint64  `json:"disk_used_bytes"`
	DiskTotal     uint64  `json:"disk_total_bytes"`
}

// NewHealthChecker checks db and, when cacheUp is set, the cache. A cache
// outage degrades the status but does not make the service unready.
func NewHealthChecker(db Pinger, cacheUp func(ctx context.Context) bool) *HealthChecker {
	return &HealthChecker{db: db, cacheUp: cacheUp, startedAt: timeutil.Now()}
}

func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:   "healthy",
		Database: h.checkDatabase(ctx),
		Cache:    h.checkCache(ctx),
	}
	switch {
	case status.Database.Status != "healthy":
		status.Status = "unhealthy"
	case status.Cache.Status == "unhealthy":
		status.Status = "degraded"
	}
	return status
}

func (h *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}

func (h *HealthChecker) checkCache(ctx context.Context) ComponentHealth {
	if h.cacheUp == nil {
		return ComponentHealth{Status: "disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	ok := h.cacheUp(ctx)
	c := ComponentHealth{Status: "healthy", ResponseTime: time.Since(start).Milliseconds()}
	if !ok {
		c.Status = "unhealthy"
	}
	return c
}

// CheckDetailed samples CPU over a short window, so it takes about 200ms.
func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	d := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Uptime:       timeutil.Now().Sub(h.startedAt).Round(time.Second).String(),
		Goroutines:   runtime.NumGoroutine(),
	}
	if pcts, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pcts) > 0 {
		d.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		d.MemoryPercent = vm.UsedPercent
		d.MemoryUsed = vm.Used
		d.MemoryTotal = vm.Total
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		d.DiskPercent = du.UsedPercent
		d.DiskUsed = du.Used
		d.DiskTotal = du.Total
	}
	return d
}
