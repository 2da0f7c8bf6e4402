package controllers

import (
	"net/http"

	"strokesegapi/config"
	"strokesegapi/repository"
	"strokesegapi/services/poller"
	"strokesegapi/utils"

	"github.com/gin-gonic/gin"
)

var (
	pollerHost *poller.Host
	healthJobs repository.JobRepository
)

// SetPollerHost initializes the monitor host used by health and job endpoints.
func SetPollerHost(h *poller.Host) {
	pollerHost = h
}

// SetJobRepository initializes the job repository used by the DB health endpoint.
func SetJobRepository(jobs repository.JobRepository) {
	healthJobs = jobs
}

// GetHealth returns the overall service health
// @Summary Overall health
// @Description Reports the health of the database connection and the job monitors
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service healthy"
// @Failure 503 {object} HealthResponse "One or more components unhealthy"
// @Router /health [get]
func getHealth(c *gin.Context) {
	dbHealthy := repository.Ping(config.DB) == nil
	pollerHealthy := pollerHost != nil && pollerHost.Healthy()

	status := "healthy"
	httpStatus := http.StatusOK
	if !dbHealthy || !pollerHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	utils.JSONResponse(c, httpStatus, gin.H{
		"status": status,
		"components": gin.H{
			"database": componentStatus(dbHealthy),
			"poller":   componentStatus(pollerHealthy),
		},
	})
}

// GetDBHealth returns database health and pool statistics
// @Summary Database health
// @Description Reports database reachability and connection pool statistics
// @Tags Health
// @Produce json
// @Success 200 {object} DBHealthResponse "Database healthy"
// @Failure 503 {object} DBHealthResponse "Database unreachable"
// @Router /health/db [get]
func getDBHealth(c *gin.Context) {
	if err := repository.Ping(config.DB); err != nil {
		utils.JSONResponse(c, http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	pool, err := config.PoolStats(config.DB)
	if err != nil {
		utils.JSONResponse(c, http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	body := gin.H{
		"status": "healthy",
		"pool":   pool,
	}
	if healthJobs != nil {
		if active, err := healthJobs.GetActiveJobs(nil); err == nil {
			body["activeJobs"] = len(active)
		}
	}
	utils.JSONResponse(c, http.StatusOK, body)
}

// GetPollerHealth returns the monitor health and per-monitor status
// @Summary Poller health
// @Description Reports whether the job monitors are running, with per-monitor detail
// @Tags Health
// @Produce json
// @Success 200 {object} PollerHealthResponse "Monitors running"
// @Failure 503 {object} PollerHealthResponse "Monitors stopped"
// @Router /health/poller [get]
func getPollerHealth(c *gin.Context) {
	if pollerHost == nil {
		utils.JSONResponse(c, http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "job monitors not configured",
		})
		return
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !pollerHost.Healthy() {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}
	utils.JSONResponse(c, httpStatus, gin.H{
		"status": status,
		"poller": pollerHost.Manager().Status(),
	})
}

func componentStatus(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}

// RegisterHealthRoutes registers the health endpoints on the root router.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", getHealth)
	r.GET("/health/db", getDBHealth)
	r.GET("/health/poller", getPollerHealth)
}
