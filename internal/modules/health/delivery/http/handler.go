package handler

import (
	"net/http"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/health/service"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	service service.HealthService
	version string
}

func NewHealthHandler(service service.HealthService, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "CuidadoPRO API",
		"version": h.version,
		"status":  "running",
	})
}

// Health answers 503 only when the database is down.
func (h *HealthHandler) Health(c *gin.Context) {
	report := h.service.Check(c.Request.Context())

	status := http.StatusOK
	if report.Status == service.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
