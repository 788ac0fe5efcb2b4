package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats is a snapshot of the host the server runs on
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
}

// CollectSystemStats samples cpu over a short window plus memory and root disk usage.
// Probes that fail leave their fields zeroed.
func CollectSystemStats(ctx context.Context) SystemStats {
	var stats SystemStats

	if cpuPercents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		stats.CPUPercent = cpuPercents[0]
	}
	if memStats, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemoryPercent = memStats.UsedPercent
		stats.MemoryUsed = FormatBytes(memStats.Used)
		stats.MemoryTotal = FormatBytes(memStats.Total)
	}
	if diskStats, err := disk.UsageWithContext(ctx, "/"); err == nil {
		stats.DiskPercent = diskStats.UsedPercent
		stats.DiskUsed = FormatBytes(diskStats.Used)
		stats.DiskTotal = FormatBytes(diskStats.Total)
	}
	return stats
}

func FormatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func FormatUptime(d time.Duration) string {
	seconds := int(d.Seconds())
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
