package submit

import (
	"context"

	"strokesegapi/pkg/apperrors"
	"strokesegapi/pkg/logger"
	"strokesegapi/services/slurm"
	"strokesegapi/services/template"
	"strokesegapi/utils"
)

// PredictionSubmitter renders the inference sbatch template and submits it
// to the workload manager.
type PredictionSubmitter struct {
	generator *template.Generator
	client    slurm.Client
}

// NewPredictionSubmitter creates a prediction submitter over the given renderer and client.
func NewPredictionSubmitter(generator *template.Generator, client slurm.Client) *PredictionSubmitter {
	return &PredictionSubmitter{generator: generator, client: client}
}

// Submit prepares the output directory, renders the script, and submits it.
// Returns the scheduler-assigned job id and the rendered script.
func (s *PredictionSubmitter) Submit(ctx context.Context, vars template.PredictionVariables) (string, string, error) {
	if err := vars.Validate(); err != nil {
		return "", "", apperrors.Wrap(apperrors.Invalid, "invalid prediction template variables", err)
	}

	if err := utils.CreateDir(vars.OutputPath); err != nil {
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

	logger.Infof("Prediction job submitted successfully - Job ID: %s", sbatchID)
	return sbatchID, script, nil
}
