package evaluation

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

// EvaluateRequest is the validated submission payload for an evaluation run.
type EvaluateRequest struct {
	ModelName      string   `json:"modelName" binding:"required"`
	EvaluationPath string   `json:"evaluationPath" binding:"required"`
	Configurations []string `json:"configurations" binding:"required,min=1,dive,oneof=2d 3d_fullres 3d_lowres 3d_cascade_lowres"`
}

// EvaluateResponse acknowledges an accepted evaluation submission.
type EvaluateResponse struct {
	Message      string `json:"message"`
	EvaluationID string `json:"evaluationId"`
	BatchJobID   string `json:"batchJobId"`
}

// StatusResponse reports the state of one evaluation run.
type StatusResponse struct {
	EvaluationID   string                 `json:"evaluationId"`
	ModelID        string                 `json:"modelId"`
	ModelName      string                 `json:"modelName"`
	Status         string                 `json:"status"`
	Configurations []string               `json:"configurations"`
	EvaluationPath string                 `json:"evaluationPath"`
	StartTime      *string                `json:"startTime,omitempty"`
	EndTime        *string                `json:"endTime,omitempty"`
	ErrorMessage   *string                `json:"errorMessage,omitempty"`
	Results        map[string]interface{} `json:"results,omitempty"`
}

// Summary is one row of the evaluation list endpoint.
type Summary struct {
	EvaluationID   string   `json:"evaluationId"`
	ModelName      string   `json:"modelName"`
	EvaluationPath string   `json:"evaluationPath"`
	Status         string   `json:"status"`
	Configurations []string `json:"configurations"`
	CreatedAt      string   `json:"createdAt"`
}

// Service owns evaluation submissions and read paths.
type Service struct {
	db          *gorm.DB
	jobs        repository.JobRepository
	evaluations repository.EvaluationRepository
	modelsRepo  repository.ModelRepository
	trainings   repository.TrainingRepository
	submitter   *submit.EvaluationSubmitter
	basePath    string
}

// NewService creates the evaluation service.
func NewService(db *gorm.DB, jobs repository.JobRepository, evaluations repository.EvaluationRepository, modelsRepo repository.ModelRepository, trainings repository.TrainingRepository, submitter *submit.EvaluationSubmitter, basePath string) *Service {
	return &Service{
		db:          db,
		jobs:        jobs,
		evaluations: evaluations,
		modelsRepo:  modelsRepo,
		trainings:   trainings,
		submitter:   submitter,
		basePath:    basePath,
	}
}

// Evaluate submits an evaluation job against a trained model and persists
// the Job + Evaluation pair in one transaction. The rendered script is kept
// on the Job row for later inspection.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	logger.Infof("Starting evaluation - Model: %s, Configurations: %v", req.ModelName, req.Configurations)

	model, err := s.modelsRepo.GetByName(nil, req.ModelName)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to look up model", err)
	}
	if model == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "model %s not found", req.ModelName)
	}

	trainingRecord, err := s.trainings.GetByID(nil, model.TrainingID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to look up model training", err)
	}
	if trainingRecord == nil {
		return nil, apperrors.Newf(apperrors.Internal, "training %s missing for model %s", model.TrainingID, model.ID)
	}

	outputPath := fmt.Sprintf("%s/%s/evaluation/%d", s.basePath, req.ModelName, time.Now().Unix())
	vars := template.EvaluationVariables{
		ModelName:      req.ModelName,
		ModelPath:      trainingRecord.ModelPath,
		EvaluationPath: req.EvaluationPath,
		Configurations: req.Configurations,
		OutputPath:     outputPath,
		Timestamp:      fmt.Sprintf("%d", time.Now().Unix()),
	}

	sbatchID, script, err := s.submitter.Submit(ctx, vars)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.Job{
		SbatchID:      sbatchID,
		Kind:          models.JobKindEvaluation,
		Status:        models.JobStatusPending,
		SbatchContent: script,
	}
	evaluation := &models.Evaluation{
		ModelID:        model.ID,
		EvaluationPath: req.EvaluationPath,
		Configurations: req.Configurations,
		Status:         models.EvaluationStatusPending,
		StartTime:      &now,
		CreatedAt:      now,
	}

	err = repository.Transaction(s.db, func(tx *gorm.DB) error {
		if err := s.jobs.Create(tx, job); err != nil {
			return err
		}
		evaluation.JobID = job.ID
		return s.evaluations.Create(tx, evaluation)
	})
	if err != nil {
		logger.Errorf("Evaluation failed - Model: %s, Error: %v", req.ModelName, err)
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create evaluation", err)
	}

	logger.Infof("Evaluation job submitted - Evaluation ID: %s, Job ID: %s", evaluation.ID, sbatchID)

	return &EvaluateResponse{
		Message:      "Evaluation started.",
		EvaluationID: evaluation.ID,
		BatchJobID:   sbatchID,
	}, nil
}

// GetStatus returns the status of one evaluation run.
func (s *Service) GetStatus(evaluationID string) (*StatusResponse, error) {
	if _, err := uuid.Parse(evaluationID); err != nil {
		return nil, apperrors.New(apperrors.Invalid, "invalid evaluation ID format")
	}

	evaluation, err := s.evaluations.GetByID(nil, evaluationID)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to get evaluation status", err)
	}
	if evaluation == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "evaluation %s not found", evaluationID)
	}

	modelName := ""
	if model, err := s.modelsRepo.GetByID(nil, evaluation.ModelID); err == nil && model != nil {
		modelName = model.ModelName
	}

	return &StatusResponse{
		EvaluationID:   evaluation.ID,
		ModelID:        evaluation.ModelID,
		ModelName:      modelName,
		Status:         string(evaluation.Status),
		Configurations: evaluation.Configurations,
		EvaluationPath: evaluation.EvaluationPath,
		StartTime:      utils.FormatTimestampPtr(evaluation.StartTime),
		EndTime:        utils.FormatTimestampPtr(evaluation.EndTime),
		ErrorMessage:   evaluation.ErrorMessage,
		Results:        evaluation.Results,
	}, nil
}

// List returns evaluation summaries with pagination, newest first.
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

	evaluations, err := s.evaluations.List(nil, limit, offset)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to list evaluations", err)
	}

	summaries := make([]Summary, 0, len(evaluations))
	for _, evaluation := range evaluations {
		modelName := ""
		if model, err := s.modelsRepo.GetByID(nil, evaluation.ModelID); err == nil && model != nil {
			modelName = model.ModelName
		}
		summaries = append(summaries, Summary{
			EvaluationID:   evaluation.ID,
			ModelName:      modelName,
			EvaluationPath: evaluation.EvaluationPath,
			Status:         string(evaluation.Status),
			Configurations: evaluation.Configurations,
			CreatedAt:      utils.FormatTimestamp(evaluation.CreatedAt),
		})
	}
	return summaries, nil
}
