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

// NewEvaluationMonitor builds the monitor that reconciles evaluation jobs.
func NewEvaluationMonitor(deps Deps) *Monitor {
	return newMonitor(models.JobKindEvaluation, deps, hooks{
		candidates: func(db *gorm.DB) ([]models.Job, error) {
			return deps.Jobs.GetActiveJobsByKind(db, models.JobKindEvaluation)
		},
		apply: func(ctx context.Context, db *gorm.DB, job *models.Job, info *slurm.JobInfo, current, next models.JobStatus) bool {
			switch next {
			case models.JobStatusCompleted, models.JobStatusFailed:
				return applyEvaluationTerminal(deps, db, job, info, next)
			default:
				return applyEvaluationProgress(deps, db, job, info, next)
			}
		},
	})
}

// applyEvaluationTerminal finalizes an evaluation run in one transaction:
// the Job flips to its terminal state and the Evaluation row follows.
func applyEvaluationTerminal(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo, next models.JobStatus) bool {
	err := repository.Transaction(db, func(tx *gorm.DB) error {
		if err := deps.Jobs.Update(tx, job.ID, jobUpdateFor(job, info, next)); err != nil {
			return fmt.Errorf("failed to update job record: %w", err)
		}

		evaluation, err := deps.Evaluations.GetByJobID(tx, job.ID)
		if err != nil {
			return fmt.Errorf("failed to load evaluation record: %w", err)
		}
		if evaluation == nil {
			return fmt.Errorf("no evaluation record found for job %s", job.ID)
		}

		status := models.EvaluationStatusCompleted
		if next == models.JobStatusFailed {
			status = models.EvaluationStatusFailed
		}
		update := repository.EvaluationUpdate{Status: &status}
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
		if err := deps.Evaluations.Update(tx, evaluation.ID, update); err != nil {
			return fmt.Errorf("failed to update evaluation record: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Evaluation finalization for job %s failed: %v", job.ID, err)
		return false
	}
	return true
}

// applyEvaluationProgress handles non-terminal transitions: the Job is
// updated first, then a pending Evaluation row is bumped to EVALUATING.
func applyEvaluationProgress(deps Deps, db *gorm.DB, job *models.Job, info *slurm.JobInfo, next models.JobStatus) bool {
	if err := deps.Jobs.Update(db, job.ID, jobUpdateFor(job, info, next)); err != nil {
		logger.Errorf("Failed to update evaluation job %s: %v", job.ID, err)
		return false
	}

	if next == models.JobStatusRunning {
		evaluation, err := deps.Evaluations.GetByJobID(db, job.ID)
		if err != nil {
			logger.Warnf("Failed to load evaluation record for job %s: %v", job.ID, err)
			return true
		}
		if evaluation != nil && evaluation.Status == models.EvaluationStatusPending {
			status := models.EvaluationStatusEvaluating
			if err := deps.Evaluations.Update(db, evaluation.ID, repository.EvaluationUpdate{Status: &status}); err != nil {
				logger.Warnf("Failed to mark evaluation %s as evaluating: %v", evaluation.ID, err)
			}
		}
	}
	return true
}
