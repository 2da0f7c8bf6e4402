package controllers

import (
	"net/http"

	"strokesegapi/pkg/logger"
	"strokesegapi/services/evaluation"
	"strokesegapi/utils"

	"github.com/gin-gonic/gin"
)

var evaluationSrv *evaluation.Service

// SetEvaluationService initializes the evaluation service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetEvaluationService(s *evaluation.Service) {
	evaluationSrv = s
}

// PostEvaluate submits a new evaluation run
// @Summary Start a model evaluation
// @Description Submits an evaluation job for a trained model over the selected configurations
// @Tags Evaluation
// @Accept json
// @Produce json
// @Param request body evaluation.EvaluateRequest true "Evaluation parameters"
// @Success 202 {object} evaluation.EvaluateResponse "Evaluation accepted"
// @Failure 400 {object} StandardErrorResponse "Invalid request body"
// @Failure 404 {object} StandardErrorResponse "Model not found"
// @Failure 500 {object} StandardErrorResponse "Submission failed"
// @Failure 503 {object} StandardErrorResponse "Database unavailable"
// @Router /api/v1/evaluation/evaluate [post]
func postEvaluate(c *gin.Context) {
	var req evaluation.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindingErrorResponse(c, err)
		return
	}

	logger.Debugf("Evaluation submission requested - Model: %s", req.ModelName)
	resp, err := evaluationSrv.Evaluate(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusAccepted, resp)
}

// GetEvaluationStatus returns the status of one evaluation run
// @Summary Get evaluation status
// @Description Returns the current status and results of an evaluation run
// @Tags Evaluation
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} evaluation.StatusResponse "Evaluation status"
// @Failure 400 {object} StandardErrorResponse "Invalid evaluation ID"
// @Failure 404 {object} StandardErrorResponse "Evaluation not found"
// @Router /api/v1/evaluation/{id}/status [get]
func getEvaluationStatus(c *gin.Context) {
	resp, err := evaluationSrv.GetStatus(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, resp)
}

// ListEvaluations returns evaluation summaries
// @Summary List evaluations
// @Description Returns evaluation runs ordered by creation time, newest first
// @Tags Evaluation
// @Produce json
// @Param limit query int false "Maximum rows to return (default 10)"
// @Param offset query int false "Rows to skip (default 0)"
// @Success 200 {array} evaluation.Summary "Evaluation summaries"
// @Failure 400 {object} StandardErrorResponse "Invalid pagination parameters"
// @Router /api/v1/evaluation/list [get]
func listEvaluations(c *gin.Context) {
	limit, offset, err := utils.ParsePagination(c, 10)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	summaries, err := evaluationSrv.List(limit, offset)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"evaluations": summaries,
		"count":       len(summaries),
	})
}

// RegisterEvaluationRoutes registers HTTP endpoints for evaluation operations.
func RegisterEvaluationRoutes(rg *gin.RouterGroup) {
	ev := rg.Group("/evaluation")
	{
		ev.POST("/evaluate", postEvaluate)
		ev.GET("/:id/status", getEvaluationStatus)
		ev.GET("/list", listEvaluations)
	}
}
