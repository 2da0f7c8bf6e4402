package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobKind identifies which monitor owns a batch job.
type JobKind string

// Batch job kinds.
const (
	JobKindTraining   JobKind = "TRAINING"
	JobKindInference  JobKind = "INFERENCE"
	JobKindEvaluation JobKind = "EVALUATION"
)

// JobStatus is the internal lifecycle state of a batch job.
type JobStatus string

// Job lifecycle states. COMPLETED and FAILED are terminal.
const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Job tracks one batch job submitted to the workload manager.
// Created by a submission service in state PENDING; mutated only by the
// monitor of its kind afterwards.
type Job struct {
	ID            string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	SbatchID      string     `gorm:"column:sbatch_id;size:255;not null;index" json:"sbatchId"`
	Kind          JobKind    `gorm:"column:job_type;size:20;not null;check:job_type IN ('TRAINING','INFERENCE','EVALUATION')" json:"jobType"`
	Status        JobStatus  `gorm:"column:status;size:20;not null;check:status IN ('PENDING','RUNNING','COMPLETED','FAILED')" json:"status"`
	FoldIndex     int        `gorm:"column:fold_index" json:"foldIndex"`
	TaskNumber    int        `gorm:"column:task_number" json:"taskNumber"`
	SbatchContent string     `gorm:"column:sbatch_content;type:text" json:"-"`
	StartTime     *time.Time `gorm:"column:start_time" json:"startTime,omitempty"`
	EndTime       *time.Time `gorm:"column:end_time" json:"endTime,omitempty"`
	ErrorMessage  *string    `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"-"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Job) TableName() string {
	return "jobs"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
