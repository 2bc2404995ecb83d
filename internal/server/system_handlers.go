package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	PID           int     `json:"pid"`
	MemUsedPct    float64 `json:"mem_used_pct"`
	CPUPct        float64 `json:"cpu_pct"`
}

// handleSystemStatus handles GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		PID:           os.Getpid(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPct = vm.UsedPercent
	}

	// Non-blocking sample; 0 means unavailable
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPct = percents[0]
	}

	s.respondJSON(w, http.StatusOK, resp)
}
