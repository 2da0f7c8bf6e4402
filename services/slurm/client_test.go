package slurm

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"strokesegapi/models"
)

// fakeRunner returns canned results and records invocations.
type fakeRunner struct {
	result *CommandResult
	err    error
	name   string
	args   []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	f.name = name
	f.args = args
	return f.result, f.err
}

// TestSubmit_ExtractsJobID tests job id extraction from sbatch output.
func TestSubmit_ExtractsJobID(t *testing.T) {
	runner := &fakeRunner{result: &CommandResult{Stdout: "Submitted batch job 12345\n"}}
	c := NewClient(runner)

	id, err := c.Submit(context.Background(), "#!/bin/bash\necho hi\n")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "12345" {
		t.Errorf("Expected job id 12345, got %q", id)
	}
	if runner.name != "sbatch" {
		t.Errorf("Expected sbatch invocation, got %q", runner.name)
	}
	if len(runner.args) != 1 {
		t.Fatalf("Expected one argument, got %v", runner.args)
	}
	if _, err := os.Stat(runner.args[0]); !os.IsNotExist(err) {
		t.Errorf("Expected scratch file %s to be removed", runner.args[0])
	}
}

// TestSubmit_NonZeroExit tests that sbatch failures surface stderr.
func TestSubmit_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{result: &CommandResult{Stderr: "sbatch: error: invalid partition", ExitCode: 1}}
	c := NewClient(runner)

	_, err := c.Submit(context.Background(), "#!/bin/bash\n")
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "invalid partition") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
}

// TestSubmit_UnparsableOutput tests that missing job id is an error.
func TestSubmit_UnparsableOutput(t *testing.T) {
	runner := &fakeRunner{result: &CommandResult{Stdout: "something unexpected"}}
	c := NewClient(runner)

	if _, err := c.Submit(context.Background(), "#!/bin/bash\n"); err == nil {
		t.Fatal("Expected error for unparsable sbatch output")
	}
}

// TestGetJobInfo_ParsesOutput tests the scontrol happy path.
func TestGetJobInfo_ParsesOutput(t *testing.T) {
	runner := &fakeRunner{result: &CommandResult{
		Stdout: "JobId=77 JobState=RUNNING Reason=None ExitCode=0:0 StartTime=2025-01-15T10:30:00 EndTime=Unknown",
	}}
	c := NewClient(runner)

	info, err := c.GetJobInfo(context.Background(), "77")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.SbatchID != "77" {
		t.Errorf("Expected sbatch id 77, got %q", info.SbatchID)
	}
	if info.State != "RUNNING" || info.InternalStatus != models.JobStatusRunning {
		t.Errorf("Unexpected state mapping: %s -> %s", info.State, info.InternalStatus)
	}
	if runner.name != "scontrol" {
		t.Errorf("Expected scontrol invocation, got %q", runner.name)
	}
}

// TestGetJobInfo_MissingJob tests the synthesized NOT_FOUND summary for jobs
// that have left the queue.
func TestGetJobInfo_MissingJob(t *testing.T) {
	runner := &fakeRunner{result: &CommandResult{Stderr: "slurm_load_jobs error: Invalid job id specified", ExitCode: 1}}
	c := NewClient(runner)

	info, err := c.GetJobInfo(context.Background(), "404")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.State != StateNotFound {
		t.Errorf("Expected NOT_FOUND state, got %q", info.State)
	}
	if info.InternalStatus != models.JobStatusCompleted {
		t.Errorf("Expected internal COMPLETED, got %s", info.InternalStatus)
	}
	if info.StartTime != nil {
		t.Error("Expected nil start time")
	}
	if info.EndTime == nil {
		t.Error("Expected synthesized end time")
	}
	if !info.IsFinished || !info.IsSuccessful {
		t.Errorf("Expected finished successful summary, got finished=%t successful=%t", info.IsFinished, info.IsSuccessful)
	}
	if info.ExitCode != SuccessExitCode {
		t.Errorf("Expected exit code %s, got %q", SuccessExitCode, info.ExitCode)
	}
	if info.ErrorMessage != "" {
		t.Errorf("Expected no error message, got %q", info.ErrorMessage)
	}
}

// TestGetJobInfo_TransportError tests that runner failures propagate.
func TestGetJobInfo_TransportError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("command timed out after 30s: scontrol")}
	c := NewClient(runner)

	if _, err := c.GetJobInfo(context.Background(), "1"); err == nil {
		t.Fatal("Expected transport error to propagate")
	}
}
