package controllers

import (
	"net/http"

	"strokesegapi/pkg/apperrors"
	"strokesegapi/utils"

	"github.com/gin-gonic/gin"
)

// GetJobLiveStatus polls the workload manager for one job
// @Summary Poll a job once
// @Description Queries the workload manager for the live state of a job without updating any records
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID (record UUID or scheduler-assigned numeric id)"
// @Success 200 {object} JobInfoResponse "Live scheduler state"
// @Failure 400 {object} StandardErrorResponse "Invalid job ID"
// @Failure 404 {object} StandardErrorResponse "Job not found"
// @Failure 503 {object} StandardErrorResponse "Monitors not configured"
// @Router /api/v1/jobs/{id}/poll [get]
func getJobLiveStatus(c *gin.Context) {
	if pollerHost == nil {
		utils.ErrorResponse(c, apperrors.New(apperrors.Unavailable, "job monitors not configured"))
		return
	}

	info, err := pollerHost.Manager().PollOnce(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if info == nil {
		utils.ErrorResponse(c, apperrors.Newf(apperrors.NotFound, "job %s not found", c.Param("id")))
		return
	}
	utils.JSONResponse(c, http.StatusOK, info)
}

// GetMonitorStatus returns the monitor manager snapshot
// @Summary Monitor status
// @Description Returns the running state and poll interval of each job monitor
// @Tags Jobs
// @Produce json
// @Success 200 {object} MonitorStatusResponse "Monitor snapshot"
// @Failure 503 {object} StandardErrorResponse "Monitors not configured"
// @Router /api/v1/jobs/monitors/status [get]
func getMonitorStatus(c *gin.Context) {
	if pollerHost == nil {
		utils.ErrorResponse(c, apperrors.New(apperrors.Unavailable, "job monitors not configured"))
		return
	}
	utils.JSONResponse(c, http.StatusOK, pollerHost.Manager().Status())
}

// RegisterJobRoutes registers HTTP endpoints for job inspection.
func RegisterJobRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	{
		jobs.GET("/:id/poll", getJobLiveStatus)
		jobs.GET("/monitors/status", getMonitorStatus)
	}
}
