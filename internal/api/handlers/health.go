package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// HealthChecker is anything with a pingable backing connection.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service and host health. Optional backends that are
// not configured report as "disabled" rather than failing the check.
type HealthHandler struct {
	db    HealthChecker
	redis HealthChecker
}

func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Services  map[string]string `json:"services"`
	System    systemStats       `json:"system"`
}

type systemStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := "ok"
	services := map[string]string{}

	services["database"] = h.check(ctx, h.db)
	services["redis"] = h.check(ctx, h.redis)
	for _, state := range services {
		if state != "healthy" && state != "disabled" {
			status = "degraded"
		}
	}

	resp := healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Services:  services,
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.System.MemoryUsedPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.System.CPUPercent = percents[0]
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) check(ctx context.Context, backend HealthChecker) string {
	if backend == nil {
		return "disabled"
	}
	if err := backend.HealthCheck(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
