package controllers

import (
	"net/http"

	"strokesegapi/pkg/logger"
	"strokesegapi/services/prediction"
	"strokesegapi/utils"

	"github.com/gin-gonic/gin"
)

var predictionSrv *prediction.Service

// SetPredictionService initializes the prediction service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetPredictionService(s *prediction.Service) {
	predictionSrv = s
}

// PostPredict submits a new prediction run
// @Summary Start a prediction
// @Description Submits an inference job against a trained model
// @Tags Prediction
// @Accept json
// @Produce json
// @Param request body prediction.PredictRequest true "Prediction parameters"
// @Success 200 {object} prediction.PredictResponse "Prediction accepted"
// @Failure 400 {object} StandardErrorResponse "Invalid request body"
// @Failure 404 {object} StandardErrorResponse "Model not found"
// @Failure 500 {object} StandardErrorResponse "Submission failed"
// @Failure 503 {object} StandardErrorResponse "Database unavailable"
// @Router /api/v1/predict/predict [post]
func postPredict(c *gin.Context) {
	var req prediction.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindingErrorResponse(c, err)
		return
	}

	logger.Debugf("Prediction submission requested - Model ID: %s", req.ModelID)
	resp, err := predictionSrv.Predict(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, resp)
}

// GetPredictionStatus returns the status of one prediction run
// @Summary Get prediction status
// @Description Returns the current status of a prediction run
// @Tags Prediction
// @Produce json
// @Param id path string true "Predict ID"
// @Success 200 {object} prediction.StatusResponse "Prediction status"
// @Failure 400 {object} StandardErrorResponse "Invalid predict ID"
// @Failure 404 {object} StandardErrorResponse "Prediction not found"
// @Router /api/v1/predict/{id}/status [get]
func getPredictionStatus(c *gin.Context) {
	resp, err := predictionSrv.GetStatus(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, resp)
}

// ListPredictions returns prediction summaries
// @Summary List predictions
// @Description Returns prediction runs ordered by creation time, newest first
// @Tags Prediction
// @Produce json
// @Param limit query int false "Maximum rows to return (default 10)"
// @Param offset query int false "Rows to skip (default 0)"
// @Success 200 {array} prediction.Summary "Prediction summaries"
// @Failure 400 {object} StandardErrorResponse "Invalid pagination parameters"
// @Router /api/v1/predict/list [get]
func listPredictions(c *gin.Context) {
	limit, offset, err := utils.ParsePagination(c, 10)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	summaries, err := predictionSrv.List(limit, offset)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"predictions": summaries,
		"count":       len(summaries),
	})
}

// RegisterPredictionRoutes registers HTTP endpoints for prediction operations.
func RegisterPredictionRoutes(rg *gin.RouterGroup) {
	pr := rg.Group("/predict")
	{
		pr.POST("/predict", postPredict)
		pr.GET("/:id/status", getPredictionStatus)
		pr.GET("/list", listPredictions)
	}
}
