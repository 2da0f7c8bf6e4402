package submit

import (
	"context"

	"strokesegapi/pkg/apperrors"
	"strokesegapi/pkg/logger"
	"strokesegapi/services/slurm"
	"strokesegapi/services/template"
	"strokesegapi/utils"
)

// EvaluationSubmitter renders the evaluation sbatch template and submits it
// to the workload manager.
type EvaluationSubmitter struct {
	generator *template.Generator
	client    slurm.Client
}

// NewEvaluationSubmitter creates an evaluation submitter over the given renderer and client.
func NewEvaluationSubmitter(generator *template.Generator, client slurm.Client) *EvaluationSubmitter {
	return &EvaluationSubmitter{generator: generator, client: client}
}

// Submit prepares the results directory, renders the script, and submits
// it. Returns the scheduler-assigned job id and the rendered script.
func (s *EvaluationSubmitter) Submit(ctx context.Context, vars template.EvaluationVariables) (string, string, error) {
	if err := vars.Validate(); err != nil {
		return "", "", apperrors.Wrap(apperrors.Invalid, "invalid evaluation template variables", err)
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

	logger.Infof("Evaluation job submitted successfully - Job ID: %s", sbatchID)
	return sbatchID, script, nil
}
