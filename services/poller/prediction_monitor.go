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

// NewPredictionMonitor builds the monitor that reconciles inference jobs.
func NewPredictionMonitor(deps Deps) *Monitor {
	return newMonitor(models.JobKindInference, deps, hooks{
		candidates: func(db *gorm.DB) ([]models.Job, error) {
			return deps.Jobs.GetActiveJobsByKind(db, models.JobKindInference)
		},
		apply: func(ctx context.Context, db *gorm.DB, job *models.Job, info *slurm.JobInfo, current, next models.JobStatus) bool {
			switch next {
			case models.JobStatusCompleted, models.JobStatusFailed:
				return applyInferenceTerminal(deps, db, job, info, next)
			default:
				return applyInferenceProgress(deps, db, job, info, next)
			}
		},
	})
}

// applyInferenceTerminal finalizes an inference run in one transaction: the
// Job flips to its terminal state and the Inference row follows, carrying
// the end time and, on failure, the scheduler error message.
func applyInferenceTerminal(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo, next models.JobStatus) bool {
	err := repository.Transaction(db, func(tx *gorm.DB) error {
		if err := deps.Jobs.Update(tx, job.ID, jobUpdateFor(job, info, next)); err != nil {
			return fmt.Errorf("failed to update job record: %w", err)
		}

		inference, err := deps.Inferences.GetByJobID(tx, job.ID)
		if err != nil {
			return fmt.Errorf("failed to load inference record: %w", err)
		}
		if inference == nil {
			return fmt.Errorf("no inference record found for job %s", job.ID)
		}

		status := models.InferenceStatusCompleted
		if next == models.JobStatusFailed {
			status = models.InferenceStatusFailed
		}
		update := repository.InferenceUpdate{Status: &status}
		endTime := info.EndTime
		if endTime == nil {
			now := time.Now()
			endTime = &now
		}
		update.EndTime = endTime
		if next == models.JobStatusFailed && info.ErrorMessage != "" {
			msg := info.ErrorMessage
			update.ErrorMessage = &msg
		}
		if err := deps.Inferences.Update(tx, inference.PredictID, update); err != nil {
			return fmt.Errorf("failed to update inference record: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Inference finalization for job %s failed: %v", job.ID, err)
		return false
	}
	return true
}

// applyInferenceProgress handles non-terminal transitions: the Job is
// updated first, then a pending Inference row is bumped to PROCESSING. The
// bump is best-effort; a miss is corrected on the next tick.
func applyInferenceProgress(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo, next models.JobStatus) bool {
	if err := deps.Jobs.Update(db, job.ID, jobUpdateFor(job, info, next)); err != nil {
		logger.Errorf("Failed to update inference job %s: %v", job.ID, err)
		return false
	}

	if next == models.JobStatusRunning {
		inference, err := deps.Inferences.GetByJobID(db, job.ID)
		if err != nil {
			logger.Warnf("Failed to load inference record for job %s: %v", job.ID, err)
			return true
		}
		if inference != nil && inference.Status == models.InferenceStatusPending {
			status := models.InferenceStatusProcessing
			if err := deps.Inferences.Update(db, inference.PredictID, repository.InferenceUpdate{Status: &status}); err != nil {
				logger.Warnf("Failed to mark inference %s as processing: %v", inference.PredictID, err)
			}
		}
	}
	return true
}
