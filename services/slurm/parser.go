package slurm

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"strokesegapi/models"
)

// StateNotFound is the synthesized external state for jobs that have left
// the scheduler queue.
const StateNotFound = "NOT_FOUND"

// SuccessExitCode is the scheduler exit code of a clean run.
const SuccessExitCode = "0:0"

const slurmTimestampLayout = "2006-01-02T15:04:05"

// JobInfo is the parsed summary of one scheduler job.
type JobInfo struct {
	SbatchID       string           `json:"sbatchId"`
	State          string           `json:"state"`
	InternalStatus models.JobStatus `json:"internalStatus"`
	StartTime      *time.Time       `json:"startTime"`
	EndTime        *time.Time       `json:"endTime"`
	ExitCode       string           `json:"exitCode"`
	Reason         string           `json:"reason"`
	IsFinished     bool             `json:"isFinished"`
	IsSuccessful   bool             `json:"isSuccessful"`
	ErrorMessage   string           `json:"errorMessage,omitempty"`
}

var lineNumberPrefix = regexp.MustCompile(`^\s*\d+→\s*`)

func isWordKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// ParseScontrolOutput parses `scontrol show job` output into Key=Value
// pairs. Values may contain spaces; a token without a key prefix is folded
// into the preceding value.
func ParseScontrolOutput(output string) (map[string]string, error) {
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("empty scontrol output")
	}

	info := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = lineNumberPrefix.ReplaceAllString(line, "")

		lastKey := ""
		for _, token := range strings.Fields(line) {
			idx := strings.Index(token, "=")
			if idx > 0 && isWordKey(token[:idx]) {
				lastKey = token[:idx]
				info[lastKey] = token[idx+1:]
			} else if lastKey != "" {
				info[lastKey] = info[lastKey] + " " + token
			}
		}
	}

	if len(info) == 0 {
		return nil, fmt.Errorf("no job information found in scontrol output")
	}
	return info, nil
}

// MapSlurmState maps a scheduler job state to the internal job status.
// Unknown states are treated as failures.
func MapSlurmState(slurmState string) models.JobStatus {
	switch slurmState {
	case "PENDING":
		return models.JobStatusPending
	case "RUNNING", "SUSPENDED":
		return models.JobStatusRunning
	case "COMPLETED", StateNotFound:
		return models.JobStatusCompleted
	default:
		return models.JobStatusFailed
	}
}

// IsJobFinished reports whether the scheduler state is terminal. The empty
// string is not finished.
func IsJobFinished(slurmState string) bool {
	switch slurmState {
	case "COMPLETED", "FAILED", "CANCELLED", "TIMEOUT", "OUT_OF_MEMORY", "NODE_FAIL", StateNotFound:
		return true
	}
	return false
}

// IsJobSuccessful reports whether the exit code denotes a clean run.
func IsJobSuccessful(exitCode string) bool {
	return exitCode == SuccessExitCode
}

func isPlaceholderReason(reason string) bool {
	switch reason {
	case "None", "(null)", "N/A":
		return true
	}
	return false
}

// ExtractErrorMessage composes a failure description from the scheduler
// state, exit code, and reason. Returns "" for jobs that are still running
// or finished successfully.
func ExtractErrorMessage(slurmState, exitCode, reason string) string {
	if !IsJobFinished(slurmState) || IsJobSuccessful(exitCode) {
		return ""
	}

	var parts []string

	if slurmState != "" {
		parts = append(parts, fmt.Sprintf("Job state: %s", slurmState))
	}
	if exitCode != "" && exitCode != SuccessExitCode {
		parts = append(parts, fmt.Sprintf("Exit code: %s", exitCode))
	}
	if reason != "" && !isPlaceholderReason(reason) {
		parts = append(parts, fmt.Sprintf("Reason: %s", reason))
	}

	switch slurmState {
	case "CANCELLED":
		parts = append(parts, "Job was cancelled")
	case "TIMEOUT":
		parts = append(parts, "Job exceeded time limit")
	case "OUT_OF_MEMORY":
		parts = append(parts, "Job ran out of memory")
	case "NODE_FAIL":
		parts = append(parts, "Node failure occurred")
	case "FAILED":
		if exitCode != "" && exitCode != SuccessExitCode {
			parts = append(parts, "Job failed with non-zero exit code")
		} else {
			parts = append(parts, "Job failed")
		}
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Job failed with state: %s", slurmState)
	}
	return strings.Join(parts, "; ")
}

// ParseSlurmTimestamp parses a scheduler timestamp. Placeholder tokens and
// malformed values yield nil.
func ParseSlurmTimestamp(value string) *time.Time {
	if value == "" || value == "Unknown" || value == "N/A" || value == "(null)" || value == "None" {
		return nil
	}
	ts, err := time.ParseInLocation(slurmTimestampLayout, value, time.Local)
	if err != nil {
		return nil
	}
	return &ts
}

// BuildJobSummary assembles a JobInfo from parsed scontrol fields.
func BuildJobSummary(fields map[string]string) *JobInfo {
	state := fields["JobState"]
	exitCode := fields["ExitCode"]
	internal := MapSlurmState(state)

	info := &JobInfo{
		SbatchID:       fields["JobId"],
		State:          state,
		InternalStatus: internal,
		StartTime:      ParseSlurmTimestamp(fields["StartTime"]),
		EndTime:        ParseSlurmTimestamp(fields["EndTime"]),
		ExitCode:       exitCode,
		Reason:         fields["Reason"],
		IsFinished:     IsJobFinished(state),
		IsSuccessful:   IsJobSuccessful(exitCode),
	}
	if internal == models.JobStatusFailed {
		info.ErrorMessage = ExtractErrorMessage(state, exitCode, info.Reason)
	}
	return info
}

// IsValidTransition validates a status change against the job state
// machine. Staying in the same state is always legal; terminal states admit
// nothing else.
func IsValidTransition(current, next models.JobStatus) bool {
	if current == next {
		return true
	}
	switch current {
	case models.JobStatusPending:
		return next == models.JobStatusRunning || next == models.JobStatusFailed
	case models.JobStatusRunning:
		return next == models.JobStatusCompleted || next == models.JobStatusFailed
	}
	return false
}

// ShouldMonitor reports whether a job in the given status is still worth
// polling.
func ShouldMonitor(status models.JobStatus) bool {
	return status == models.JobStatusPending || status == models.JobStatusRunning
}

// TransitionReason describes a status change for logging.
func TransitionReason(current, next models.JobStatus, info *JobInfo) string {
	if current == next {
		return fmt.Sprintf("Status unchanged: %s", current)
	}

	switch next {
	case models.JobStatusRunning:
		return fmt.Sprintf("Job started running (SLURM state: %s)", info.State)
	case models.JobStatusCompleted:
		if info.State == StateNotFound {
			return "Job completed and removed from SLURM queue (assumed successful)"
		}
		if info.ExitCode == SuccessExitCode {
			return fmt.Sprintf("Job completed successfully (SLURM state: %s, Exit code: %s)", info.State, info.ExitCode)
		}
		return fmt.Sprintf("Job completed (SLURM state: %s, Exit code: %s)", info.State, info.ExitCode)
	case models.JobStatusFailed:
		if info.Reason != "" && !isPlaceholderReason(info.Reason) {
			return fmt.Sprintf("Job failed (SLURM state: %s, Reason: %s)", info.State, info.Reason)
		}
		return fmt.Sprintf("Job failed (SLURM state: %s)", info.State)
	}
	return fmt.Sprintf("Status changed from %s to %s (SLURM state: %s)", current, next, info.State)
}
