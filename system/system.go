package system

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time snapshot of host resource usage.
type Stats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	HostUptime    uint64  `json:"host_uptime_seconds"`
}

// GetCPUUsage returns the current CPU utilisation percentage across all cores.
func GetCPUUsage() float64 {
	percentages, err := cpu.Percent(0, false)
	if err != nil || len(percentages) == 0 {
		return 0
	}
	return percentages[0]
}

// GetMemoryUsage returns used memory percentage and used megabytes.
func GetMemoryUsage() (float64, uint64) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0
	}
	return vm.UsedPercent, vm.Used / 1024 / 1024
}

// Snapshot gathers all host stats for the status endpoint.
func Snapshot() Stats {
	memPercent, memUsed := GetMemoryUsage()
	uptime, err := host.Uptime()
	if err != nil {
		uptime = 0
	}
	return Stats{
		CPUPercent:    GetCPUUsage(),
		MemoryPercent: memPercent,
		MemoryUsedMB:  memUsed,
		HostUptime:    uptime,
	}
}
