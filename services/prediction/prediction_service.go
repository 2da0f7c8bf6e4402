package prediction

import (
	"context"
	"fmt"
	"time"

	"strokesegapi/models"
	"strokesegapi/pkg/apperrors"
	"strokesegapi/pkg/logger"
	"strokesegapi/repository"
	"strokesegapi/services/submit"
	"strokesegapi/services/template"
	"strokesegapi/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictRequest is the validated submission payload for a prediction run.
type PredictRequest struct {
	ModelID   string `json:"modelId" binding:"required"`
	InputPath string `json:"inputPath" binding:"required"`
}

// PredictResponse acknowledges an accepted prediction submission.
type PredictResponse struct {
	PredictID  string `json:"predictId"`
	ModelID    string `json:"modelId"`
	BatchJobID string `json:"batchJobId"`
	Timestamp  string `json:"timestamp"`
}

// StatusResponse reports the state of one prediction run.
type StatusResponse struct {
	PredictID    string  `json:"predictId"`
	ModelID      string  `json:"modelId"`
	Status       string  `json:"status"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
}

// Summary is one row of the prediction list endpoint.
type Summary struct {
	PredictID string `json:"predictId"`
	ModelID   string `json:"modelId"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// Service owns prediction submissions and read paths.
type Service struct {
	db         *gorm.DB
	jobs       repository.JobRepository
	inferences repository.InferenceRepository
	modelsRepo repository.ModelRepository
	trainings  repository.TrainingRepository
	submitter  *submit.PredictionSubmitter
	basePath   string
}

// NewService creates the prediction service.
func NewService(db *gorm.DB, jobs repository.JobRepository, inferences repository.InferenceRepository, modelsRepo repository.ModelRepository, trainings repository.TrainingRepository, submitter *submit.PredictionSubmitter, basePath string) *Service {
	return &Service{
		db:         db,
		jobs:       jobs,
		inferences: inferences,
		modelsRepo: modelsRepo,
		trainings:  trainings,
		submitter:  submitter,
		basePath:   basePath,
	}
}

// Predict submits a prediction job against a trained model and persists the
// Job + Inference pair in one transaction.
func (s *Service) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	if _, err := uuid.Parse(req.ModelID); err != nil {
		return nil, apperrors.New(apperrors.Invalid, "invalid model ID format")
	}

	model, err := s.modelsRepo.GetByID(nil, req.ModelID)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to look up model", err)
	}
	if model == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "model %s not found", req.ModelID)
	}

	trainingRecord, err := s.trainings.GetByID(nil, model.TrainingID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to look up model training", err)
	}
	if trainingRecord == nil {
		return nil, apperrors.Newf(apperrors.Internal, "training %s missing for model %s", model.TrainingID, model.ID)
	}

	outputDir := fmt.Sprintf("%s/%s/prediction/%d", s.basePath, model.ModelName, time.Now().Unix())
	vars := template.PredictionVariables{
		ModelName:  model.ModelName,
		ModelPath:  trainingRecord.ModelPath,
		OutputPath: outputDir,
		Timestamp:  fmt.Sprintf("%d", time.Now().Unix()),
	}

	sbatchID, script, err := s.submitter.Submit(ctx, vars)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.Job{
		SbatchID:      sbatchID,
		Kind:          models.JobKindInference,
		Status:        models.JobStatusPending,
		SbatchContent: script,
	}
	inference := &models.Inference{
		ModelID:   model.ID,
		InputData: req.InputPath,
		OutputDir: outputDir,
		Status:    models.InferenceStatusPending,
		StartTime: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = repository.Transaction(s.db, func(tx *gorm.DB) error {
		if err := s.jobs.Create(tx, job); err != nil {
			return err
		}
		inference.JobID = job.ID
		return s.inferences.Create(tx, inference)
	})
	if err != nil {
		logger.Errorf("Prediction failed - Model: %s, Error: %v", model.ModelName, err)
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create prediction", err)
	}

	logger.Infof("Prediction job submitted - Predict ID: %s, Job ID: %s", inference.PredictID, sbatchID)

	return &PredictResponse{
		PredictID:  inference.PredictID,
		ModelID:    model.ID,
		BatchJobID: sbatchID,
		Timestamp:  utils.FormatTimestamp(inference.CreatedAt),
	}, nil
}

// GetStatus returns the status of one prediction run.
func (s *Service) GetStatus(predictID string) (*StatusResponse, error) {
	if _, err := uuid.Parse(predictID); err != nil {
		return nil, apperrors.New(apperrors.Invalid, "invalid prediction ID format")
	}

	inference, err := s.inferences.GetByPredictID(nil, predictID)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to get prediction status", err)
	}
	if inference == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "prediction %s not found", predictID)
	}

	return &StatusResponse{
		PredictID:    inference.PredictID,
		ModelID:      inference.ModelID,
		Status:       string(inference.Status),
		StartTime:    utils.FormatTimestampPtr(inference.StartTime),
		EndTime:      utils.FormatTimestampPtr(inference.EndTime),
		ErrorMessage: inference.ErrorMessage,
	}, nil
}

// List returns prediction summaries with pagination, newest first.
func (s *Service) List(limit, offset int) ([]Summary, error) {
	if limit < 0 {
		return nil, apperrors.New(apperrors.Invalid, "limit must not be negative")
	}
	if offset < 0 {
		return nil, apperrors.New(apperrors.Invalid, "offset must not be negative")
	}
	if limit == 0 {
		limit = 10
	}

	inferences, err := s.inferences.List(nil, limit, offset)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to list predictions", err)
	}

	summaries := make([]Summary, 0, len(inferences))
	for _, inference := range inferences {
		summaries = append(summaries, Summary{
			PredictID: inference.PredictID,
			ModelID:   inference.ModelID,
			Status:    string(inference.Status),
			CreatedAt: utils.FormatTimestamp(inference.CreatedAt),
		})
	}
	return summaries, nil
}
