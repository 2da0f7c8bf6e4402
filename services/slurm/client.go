package slurm

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"strokesegapi/pkg/logger"
)

var submittedJobPattern = regexp.MustCompile(`Submitted batch job (\d+)`)

// Client submits batch scripts to the workload manager and queries job state.
type Client interface {
	Submit(ctx context.Context, script string) (string, error)
	GetJobInfo(ctx context.Context, sbatchID string) (*JobInfo, error)
}

type client struct {
	runner Runner
}

// NewClient creates a scheduler client on top of the given command runner.
func NewClient(runner Runner) Client {
	return &client{runner: runner}
}

// Submit writes the script to a scratch file, invokes sbatch, and parses
// the assigned job id from its output. The scratch file is removed on every
// exit path.
func (c *client) Submit(ctx context.Context, script string) (string, error) {
	file, err := os.CreateTemp("", "sbatch-*.sbatch")
	if err != nil {
		return "", fmt.Errorf("failed to create sbatch scratch file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(script); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write sbatch scratch file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close sbatch scratch file: %w", err)
	}

	result, err := c.runner.Run(ctx, "sbatch", path)
	if err != nil {
		return "", fmt.Errorf("sbatch execution failed: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("sbatch failed with exit code %d: %s", result.ExitCode, result.Stderr)
	}

	match := submittedJobPattern.FindStringSubmatch(result.Stdout)
	if match == nil {
		return "", fmt.Errorf("could not extract job ID from sbatch output: %s", result.Stdout)
	}

	logger.Infof("Sbatch job submitted successfully - Job ID: %s", match[1])
	return match[1], nil
}

// GetJobInfo queries scontrol for the job. A non-zero exit means the job
// has left the queue and is reported as a successful NOT_FOUND completion;
// only transport failures return an error.
func (c *client) GetJobInfo(ctx context.Context, sbatchID string) (*JobInfo, error) {
	result, err := c.runner.Run(ctx, "scontrol", "show", "job", sbatchID)
	if err != nil {
		return nil, fmt.Errorf("scontrol execution failed for job %s: %w", sbatchID, err)
	}

	if result.ExitCode != 0 {
		logger.Infof("Job %s not found in SLURM queue - treating as completed", sbatchID)
		logger.Debugf("scontrol stderr for missing job %s: %s", sbatchID, result.Stderr)
		return missingJobSummary(sbatchID), nil
	}

	fields, err := ParseScontrolOutput(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scontrol output for job %s: %w", sbatchID, err)
	}

	info := BuildJobSummary(fields)
	if info.SbatchID == "" {
		info.SbatchID = sbatchID
	}
	logger.Debugf("Job %s info retrieved - State: %s", sbatchID, info.State)
	return info, nil
}

// missingJobSummary synthesizes the summary for a job the scheduler no
// longer knows about: finished, successful, end time now, start time
// unknown, no error.
func missingJobSummary(sbatchID string) *JobInfo {
	now := time.Now()
	return &JobInfo{
		SbatchID:       sbatchID,
		State:          StateNotFound,
		InternalStatus: MapSlurmState(StateNotFound),
		StartTime:      nil,
		EndTime:        &now,
		ExitCode:       SuccessExitCode,
		Reason:         "Job completed and removed from SLURM queue",
		IsFinished:     true,
		IsSuccessful:   true,
		ErrorMessage:   "",
	}
}
