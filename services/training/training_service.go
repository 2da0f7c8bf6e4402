package training

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

// TrainRequest is the validated submission payload for a training run.
type TrainRequest struct {
	ModelName  string `json:"modelName" binding:"required"`
	ImagesPath string `json:"imagesPath"`
	LabelsPath string `json:"labelsPath"`
	FoldIndex  int    `json:"foldIndex" binding:"gte=0"`
	TaskNumber int    `json:"taskNumber" binding:"gte=0"`
}

// TrainResponse acknowledges an accepted training submission.
type TrainResponse struct {
	Message    string `json:"message"`
	TrainingID string `json:"trainingId"`
	BatchJobID string `json:"batchJobId"`
}

// StatusResponse reports the state of one training run.
type StatusResponse struct {
	TrainingID   string  `json:"trainingId"`
	Status       string  `json:"status"`
	Progress     float64 `json:"progress"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
}

// Summary is one row of the training list endpoint.
type Summary struct {
	TrainingID   string  `json:"trainingId"`
	TrainingName string  `json:"trainingName"`
	Status       string  `json:"status"`
	CreatedAt    *string `json:"createdAt"`
}

// Service owns training submissions and read paths.
type Service struct {
	db        *gorm.DB
	jobs      repository.JobRepository
	trainings repository.TrainingRepository
	submitter *submit.TrainingSubmitter
	basePath  string
}

// NewService creates the training service.
func NewService(db *gorm.DB, jobs repository.JobRepository, trainings repository.TrainingRepository, submitter *submit.TrainingSubmitter, basePath string) *Service {
	return &Service{
		db:        db,
		jobs:      jobs,
		trainings: trainings,
		submitter: submitter,
		basePath:  basePath,
	}
}

// Train submits a training job and persists the Job + Training pair in one
// transaction. Nothing is stored when submission fails.
func (s *Service) Train(ctx context.Context, req TrainRequest) (*TrainResponse, error) {
	logger.Infof("Starting training - Name: %s", req.ModelName)
	modelPath := fmt.Sprintf("%s/%s/%d", s.basePath, req.ModelName, time.Now().Unix())

	vars := template.TrainingVariables{
		ModelName:  req.ModelName,
		ModelPath:  modelPath,
		FoldIndex:  req.FoldIndex,
		TaskNumber: req.TaskNumber,
		Timestamp:  fmt.Sprintf("%d", time.Now().Unix()),
	}

	sbatchID, script, err := s.submitter.Submit(ctx, vars)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.Job{
		SbatchID:      sbatchID,
		Kind:          models.JobKindTraining,
		Status:        models.JobStatusPending,
		FoldIndex:     req.FoldIndex,
		TaskNumber:    req.TaskNumber,
		SbatchContent: script,
	}
	training := &models.Training{
		Name:      req.ModelName,
		ModelPath: modelPath,
		Status:    models.TrainingStatusTraining,
		Progress:  0,
		StartTime: &now,
	}
	if req.ImagesPath != "" {
		training.ImagesPath = &req.ImagesPath
	}
	if req.LabelsPath != "" {
		training.LabelsPath = &req.LabelsPath
	}

	err = repository.Transaction(s.db, func(tx *gorm.DB) error {
		if err := s.jobs.Create(tx, job); err != nil {
			return err
		}
		training.JobID = job.ID
		return s.trainings.Create(tx, training)
	})
	if err != nil {
		logger.Errorf("Training failed - Name: %s, Error: %v", req.ModelName, err)
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create training", err)
	}

	logger.Infof("Training job submitted - Training ID: %s, Job ID: %s", training.ID, sbatchID)

	return &TrainResponse{
		Message:    "Training started.",
		TrainingID: training.ID,
		BatchJobID: sbatchID,
	}, nil
}

// GetStatus returns the status of one training run.
func (s *Service) GetStatus(trainingID string) (*StatusResponse, error) {
	if _, err := uuid.Parse(trainingID); err != nil {
		return nil, apperrors.New(apperrors.Invalid, "invalid training ID format")
	}

	training, err := s.trainings.GetByID(nil, trainingID)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to get training status", err)
	}
	if training == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "training %s not found", trainingID)
	}

	return &StatusResponse{
		TrainingID:   training.ID,
		Status:       string(training.Status),
		Progress:     training.Progress,
		StartTime:    utils.FormatTimestampPtr(training.StartTime),
		EndTime:      utils.FormatTimestampPtr(training.EndTime),
		ErrorMessage: training.ErrorMessage,
	}, nil
}

// List returns training summaries with pagination, newest first.
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

	trainings, err := s.trainings.List(nil, limit, offset)
	if err != nil {
		if apperrors.IsConnectionError(err) {
			return nil, apperrors.Wrap(apperrors.Unavailable, "database connection failed", err)
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to list trainings", err)
	}

	summaries := make([]Summary, 0, len(trainings))
	for _, training := range trainings {
		summaries = append(summaries, Summary{
			TrainingID:   training.ID,
			TrainingName: training.Name,
			Status:       string(training.Status),
			CreatedAt:    utils.FormatTimestampPtr(training.StartTime),
		})
	}
	logger.Infof("Trainings listed successfully - Count: %d, Limit: %d, Offset: %d", len(summaries), limit, offset)
	return summaries, nil
}
