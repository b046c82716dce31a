package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes
type HealthController struct {
	store  Pinger
	driver string
}

// NewHealthController creates a new HealthController; a nil store is always healthy
func NewHealthController(store Pinger, driver string) *HealthController {
	return &HealthController{
		store:  store,
		driver: driver,
	}
}

// Health checks the storage connection
func (c *HealthController) Health(ctx *gin.Context) {
	status := gin.H{"status": "ok", "storage": c.driver}

	if c.store != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := c.store.Ping(pingCtx); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Storage unavailable")
			errorDetail = errorDetail.WithDetails(err.Error())
			ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
			return
		}
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(status))
}

// Ping answers without touching any dependency
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
}
