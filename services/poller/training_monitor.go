package poller

import (
	"context"
	"fmt"
	"time"

	"strokesegapi/models"
	"strokesegapi/pkg/logger"
	"strokesegapi/repository"
	"strokesegapi/services/slurm"

	"gorm.io/gorm"
)

// NewTrainingMonitor builds the monitor that reconciles training jobs. On
// completion it promotes the Training row and registers the produced model
// in one transaction.
func NewTrainingMonitor(deps Deps) *Monitor {
	return newMonitor(models.JobKindTraining, deps, hooks{
		candidates: func(db *gorm.DB) ([]models.Job, error) {
			return deps.Jobs.GetActiveJobsByKind(db, models.JobKindTraining)
		},
		apply: func(ctx context.Context, db *gorm.DB, job *models.Job, info *slurm.JobInfo, current, next models.JobStatus) bool {
			switch next {
			case models.JobStatusCompleted:
				return applyTrainingCompletion(deps, db, job, info)
			case models.JobStatusFailed:
				return applyTrainingFailure(deps, db, job, info, next)
			default:
				return applyTrainingProgress(deps, db, job, info, next)
			}
		},
	})
}

// applyTrainingCompletion finalizes a successful training run: the Job and
// Training rows flip to their terminal states and a Model record is
// registered, all in one transaction. A model already registered for the
// training makes the insert a no-op, so re-running after a partial failure
// is safe.
func applyTrainingCompletion(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo) bool {
	err := repository.Transaction(db, func(tx *gorm.DB) error {
		if err := deps.Jobs.Update(tx, job.ID, jobUpdateFor(job, info, models.JobStatusCompleted)); err != nil {
			return fmt.Errorf("failed to update job record: %w", err)
		}

		training, err := deps.Trainings.GetByJobID(tx, job.ID)
		if err != nil {
			return fmt.Errorf("failed to load training record: %w", err)
		}
		if training == nil {
			return fmt.Errorf("no training record found for job %s", job.ID)
		}

		status := models.TrainingStatusTrained
		update := repository.TrainingUpdate{Status: &status}
		if info.EndTime != nil {
			update.EndTime = info.EndTime
		}
		if err := deps.Trainings.Update(tx, training.ID, update); err != nil {
			return fmt.Errorf("failed to update training record: %w", err)
		}

		existing, err := deps.Models.GetByTrainingID(tx, training.ID)
		if err != nil {
			return fmt.Errorf("failed to check for existing model: %w", err)
		}
		if existing != nil {
			logger.Infof("Model already registered for training %s, skipping insert", training.ID)
			return nil
		}

		createdAt := info.EndTime
		if createdAt == nil {
			now := time.Now()
			createdAt = &now
		}
		model := &models.Model{
			TrainingID: training.ID,
			ModelName:  training.Name + "_model",
			CreatedAt:  createdAt,
		}
		if err := deps.Models.Create(tx, model); err != nil {
			return fmt.Errorf("failed to register model: %w", err)
		}
		logger.Infof("Model %s registered for completed training %s", model.ID, training.ID)
		return nil
	})
	if err != nil {
		logger.Errorf("Training completion for job %s failed: %v", job.ID, err)
		return false
	}
	return true
}

// applyTrainingFailure flips the Job and its Training row to FAILED in one
// transaction, propagating the composed scheduler error message.
func applyTrainingFailure(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo, next models.JobStatus) bool {
	err := repository.Transaction(db, func(tx *gorm.DB) error {
		if err := deps.Jobs.Update(tx, job.ID, jobUpdateFor(job, info, next)); err != nil {
			return fmt.Errorf("failed to update job record: %w", err)
		}

		training, err := deps.Trainings.GetByJobID(tx, job.ID)
		if err != nil {
			return fmt.Errorf("failed to load training record: %w", err)
		}
		if training == nil {
			return fmt.Errorf("no training record found for job %s", job.ID)
		}

		status := models.TrainingStatusFailed
		update := repository.TrainingUpdate{Status: &status}
		if info.EndTime != nil {
			update.EndTime = info.EndTime
		}
		if info.ErrorMessage != "" {
			msg := info.ErrorMessage
			update.ErrorMessage = &msg
		}
		if err := deps.Trainings.Update(tx, training.ID, update); err != nil {
			return fmt.Errorf("failed to update training record: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Training failure handling for job %s failed: %v", job.ID, err)
		return false
	}
	return true
}

// applyTrainingProgress handles the non-terminal transitions (PENDING to
// RUNNING, or newly learned timestamps) with a plain Job update.
func applyTrainingProgress(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo, next models.JobStatus) bool {
	if err := deps.Jobs.Update(db, job.ID, jobUpdateFor(job, info, next)); err != nil {
		logger.Errorf("Failed to update training job %s: %v", job.ID, err)
		return false
	}
	return true
}
