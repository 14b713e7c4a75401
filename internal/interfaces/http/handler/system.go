package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Build metadata, stamped at link time via
// -ldflags "-X .../handler.buildVersion=... -X .../handler.buildCommit=...".
var (
	buildVersion = "1.0.0"
	buildCommit  = "unknown"
)

// SystemHandler serves liveness and build information endpoints.
type SystemHandler struct {
	BaseHandler
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
	}
}

// SystemInfoResponse describes the running service build.
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name          string `json:"name" example:"Back Office API"`
	Version       string `json:"version" example:"1.0.0"`
	Commit        string `json:"commit" example:"4f9c2ab"`
	GoVersion     string `json:"go_version" example:"go1.25.5"`
	Uptime        string `json:"uptime" example:"1h30m45s"`
	UptimeSeconds int64  `json:"uptime_seconds" example:"5445"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns build metadata and uptime for the running service
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	uptime := time.Since(h.startTime)
	h.Success(c, SystemInfoResponse{
		Name:          "Back Office API",
		Version:       buildVersion,
		Commit:        buildCommit,
		GoVersion:     runtime.Version(),
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
	})
}

// PingResponse is the liveness probe payload.
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
