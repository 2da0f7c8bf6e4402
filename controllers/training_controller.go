package controllers

import (
	"net/http"

	"strokesegapi/pkg/logger"
	"strokesegapi/services/training"
	"strokesegapi/utils"

	"github.com/gin-gonic/gin"
)

var trainingSrv *training.Service

// SetTrainingService initializes the training service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetTrainingService(s *training.Service) {
	trainingSrv = s
}

// PostTrain submits a new training run
// @Summary Start model training
// @Description Submits a training job to the workload manager and records the run
// @Tags Training
// @Accept json
// @Produce json
// @Param request body training.TrainRequest true "Training parameters"
// @Success 202 {object} training.TrainResponse "Training accepted"
// @Failure 400 {object} StandardErrorResponse "Invalid request body"
// @Failure 500 {object} StandardErrorResponse "Submission failed"
// @Failure 503 {object} StandardErrorResponse "Database unavailable"
// @Router /api/v1/training/train [post]
func postTrain(c *gin.Context) {
	var req training.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindingErrorResponse(c, err)
		return
	}

	logger.Debugf("Training submission requested - Name: %s", req.ModelName)
	resp, err := trainingSrv.Train(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusAccepted, resp)
}

// GetTrainingStatus returns the status of one training run
// @Summary Get training status
// @Description Returns the current status and progress of a training run
// @Tags Training
// @Produce json
// @Param id path string true "Training ID"
// @Success 200 {object} training.StatusResponse "Training status"
// @Failure 400 {object} StandardErrorResponse "Invalid training ID"
// @Failure 404 {object} StandardErrorResponse "Training not found"
// @Router /api/v1/training/{id}/status [get]
func getTrainingStatus(c *gin.Context) {
	resp, err := trainingSrv.GetStatus(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, resp)
}

// ListTrainings returns training summaries
// @Summary List trainings
// @Description Returns training runs ordered by start time, newest first
// @Tags Training
// @Produce json
// @Param limit query int false "Maximum rows to return (default 10)"
// @Param offset query int false "Rows to skip (default 0)"
// @Success 200 {array} training.Summary "Training summaries"
// @Failure 400 {object} StandardErrorResponse "Invalid pagination parameters"
// @Router /api/v1/training/list [get]
func listTrainings(c *gin.Context) {
	limit, offset, err := utils.ParsePagination(c, 10)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	summaries, err := trainingSrv.List(limit, offset)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"trainings": summaries,
		"count":     len(summaries),
	})
}

// RegisterTrainingRoutes registers HTTP endpoints for training operations.
func RegisterTrainingRoutes(rg *gin.RouterGroup) {
	tr := rg.Group("/training")
	{
		tr.POST("/train", postTrain)
		tr.GET("/:id/status", getTrainingStatus)
		tr.GET("/list", listTrainings)
	}
}
