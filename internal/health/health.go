package health

import (
	"context"
	"time"

	"stock-backend/internal/cache"
	"stock-backend/internal/monitoring"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db        Pinger
	redisUp   func(ctx context.Context) bool
	redisOn   func() bool
	startedAt time.Time
	version   string
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Redis    ComponentHealth `json:"redis"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds process and host information to the readiness result
type DetailedStatus struct {
	HealthStatus
	Version     string                 `json:"version"`
	Uptime      string                 `json:"uptime"`
	StockFeed   int                    `json:"stock_feed_clients"`
	System      monitoring.SystemStats `json:"system"`
	GeneratedAt time.Time              `json:"generated_at"`
}

func NewHealthChecker(db Pinger, version string) *HealthChecker {
	return &HealthChecker{
		db:        db,
		redisUp:   cache.IsHealthy,
		redisOn:   func() bool { return cache.GetClient() != nil },
		startedAt: time.Now(),
		version:   version,
	}
}

// CheckReady pings the database and Redis. The database decides readiness;
// a missing Redis only degrades the result since the cache falls back to misses.
func (h *HealthChecker) CheckReady(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)
	redisHealth := h.checkRedis(ctx)

	status := StatusHealthy
	switch {
	case dbHealth.Status != StatusHealthy:
		status = StatusUnhealthy
	case redisHealth.Status == StatusUnhealthy:
		status = StatusDegraded
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Redis:    redisHealth,
	}
}

func (h *HealthChecker) CheckDetailed(ctx context.Context, feedClients int) DetailedStatus {
	return DetailedStatus{
		HealthStatus: h.CheckReady(ctx),
		Version:      h.version,
		Uptime:       monitoring.FormatUptime(time.Since(h.startedAt)),
		StockFeed:    feedClients,
		System:       monitoring.CollectSystemStats(ctx),
		GeneratedAt:  time.Now().UTC(),
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: StatusUnhealthy, ResponseTime: responseTime}
	}
	return ComponentHealth{Status: StatusHealthy, ResponseTime: responseTime}
}

func (h *HealthChecker) checkRedis(ctx context.Context) ComponentHealth {
	if !h.redisOn() {
		return ComponentHealth{Status: StatusDisabled}
	}
	start := time.Now()
	ok := h.redisUp(ctx)
	responseTime := time.Since(start).Milliseconds()
	if !ok {
		return ComponentHealth{Status: StatusUnhealthy, ResponseTime: responseTime}
	}
	return ComponentHealth{Status: StatusHealthy, ResponseTime: responseTime}
}
