package submit

import (
	"context"

	"strokesegapi/pkg/apperrors"
	"strokesegapi/pkg/logger"
	"strokesegapi/services/slurm"
	"strokesegapi/services/template"
	"strokesegapi/utils"
)

// TrainingSubmitter renders the training sbatch template and submits it to
// the workload manager. No persistence happens here; the business layer
// stores the Job and Training records after a successful submission.
type TrainingSubmitter struct {
	generator *template.Generator
	client    slurm.Client
}

// NewTrainingSubmitter creates a training submitter over the given renderer and client.
func NewTrainingSubmitter(generator *template.Generator, client slurm.Client) *TrainingSubmitter {
	return &TrainingSubmitter{generator: generator, client: client}
}

// Submit prepares the model output directory, renders the script, and
// submits it. Returns the scheduler-assigned job id and the rendered script.
func (s *TrainingSubmitter) Submit(ctx context.Context, vars template.TrainingVariables) (string, string, error) {
	if err := vars.Validate(); err != nil {
		return "", "", apperrors.Wrap(apperrors.Invalid, "invalid training template variables", err)
	}

	if err := utils.CreateDir(vars.ModelPath); err != nil {
		return "", "", apperrors.Wrap(apperrors.Internal, "submission failed", err)
	}

	script, err := s.generator.Render(vars.ToMap())
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.Internal, "submission failed", err)
	}

	sbatchID, err := s.client.Submit(ctx, script)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.Internal, "submission failed", err)
	}

	logger.Infof("Training job submitted successfully - Job ID: %s", sbatchID)
	return sbatchID, script, nil
}
