package health

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"gorm.io/gorm"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	maxGoroutines  = 10000
	maxMemoryMB    = 500
	slowDBLatency  = 100 * time.Millisecond
	dbPingDeadline = 2 * time.Second
)

// HealthStatus represents the overall health of the application
type HealthStatus struct {
	Status    string                     `json:"status"`
	Timestamp time.Time                  `json:"timestamp"`
	Version   string                     `json:"version"`
	Checks    map[string]ComponentHealth `json:"checks"`
	Uptime    int64                      `json:"uptime_seconds"`
	Duration  int64                      `json:"duration_ms"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Healthy bool                   `json:"healthy"`
	Details map[string]interface{} `json:"details,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// SystemMetrics captures current system metrics
type SystemMetrics struct {
	MemoryUsageMB  uint64 `json:"memory_usage_mb"`
	GoroutineCount int    `json:"goroutine_count"`
	CPUNumCores    int    `json:"cpu_num_cores"`
	Uptime         int64  `json:"uptime_seconds"`
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	db              *gorm.DB
	version         string
	startTime       time.Time
	mu              sync.RWMutex
	lastCheckStatus string
}

func NewHealthChecker(db *gorm.DB, version string) *HealthChecker {
	return &HealthChecker{
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// Check performs a complete health check. A failed database makes the
// service unhealthy; resource pressure only degrades it.
func (hc *HealthChecker) Check(ctx context.Context) HealthStatus {
	start := time.Now()
	status := HealthStatus{
		Timestamp: start,
		Version:   hc.version,
		Checks:    make(map[string]ComponentHealth),
		Uptime:    int64(time.Since(hc.startTime).Seconds()),
	}

	db := hc.checkDatabase(ctx)
	mem := hc.checkMemory()
	goroutines := runtime.NumGoroutine()
	status.Checks["database"] = db
	status.Checks["memory"] = mem
	status.Checks["goroutines"] = ComponentHealth{
		Healthy: goroutines < maxGoroutines,
		Details: map[string]interface{}{"count": goroutines},
	}

	switch {
	case !db.Healthy:
		status.Status = StatusUnhealthy
	case !mem.Healthy || goroutines >= maxGoroutines:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}
	status.Duration = time.Since(start).Milliseconds()

	hc.mu.Lock()
	hc.lastCheckStatus = status.Status
	hc.mu.Unlock()

	return status
}

func (hc *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	if hc.db == nil {
		return ComponentHealth{Healthy: false, Error: "database not initialized"}
	}

	start := time.Now()
	sqlDB, err := hc.db.DB()
	if err != nil {
		return ComponentHealth{Healthy: false, Error: fmt.Sprintf("failed to get database connection: %v", err)}
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingDeadline)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return ComponentHealth{Healthy: false, Error: fmt.Sprintf("database ping failed: %v", err)}
	}

	latency := time.Since(start)
	return ComponentHealth{
		Healthy: true,
		Details: map[string]interface{}{
			"latency_ms": latency.Milliseconds(),
			"latency_ok": latency < slowDBLatency,
		},
	}
}

func (hc *HealthChecker) checkMemory() ComponentHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	allocMB := m.Alloc / 1024 / 1024
	return ComponentHealth{
		Healthy: allocMB < maxMemoryMB,
		Details: map[string]interface{}{
			"allocated_mb": allocMB,
			"sys_mb":       m.Sys / 1024 / 1024,
			"num_gc":       m.NumGC,
		},
	}
}

// IsHealthy reports the result of the last Check
func (hc *HealthChecker) IsHealthy() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastCheckStatus == StatusHealthy
}

// IsReady returns true if the database answers a ping
func (hc *HealthChecker) IsReady(ctx context.Context) bool {
	return hc.checkDatabase(ctx).Healthy
}

// IsAlive returns true if system is running
func (hc *HealthChecker) IsAlive() bool {
	return true
}

func (hc *HealthChecker) GetMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsageMB:  m.Alloc / 1024 / 1024,
		GoroutineCount: runtime.NumGoroutine(),
		CPUNumCores:    runtime.NumCPU(),
		Uptime:         int64(time.Since(hc.startTime).Seconds()),
	}
}
