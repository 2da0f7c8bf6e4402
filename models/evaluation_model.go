package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvaluationStatus is the lifecycle state of an evaluation run.
type EvaluationStatus string

// Evaluation lifecycle states. COMPLETED and FAILED are terminal.
const (
	EvaluationStatusPending    EvaluationStatus = "PENDING"
	EvaluationStatusEvaluating EvaluationStatus = "EVALUATING"
	EvaluationStatusCompleted  EvaluationStatus = "COMPLETED"
	EvaluationStatusFailed     EvaluationStatus = "FAILED"
)

// Evaluation configuration identifiers accepted by the segmentation pipeline.
const (
	Config2D           = "2d"
	Config3DFullres    = "3d_fullres"
	Config3DLowres     = "3d_lowres"
	Config3DCascLowres = "3d_cascade_lowres"
)

// Evaluation is the domain record for one model evaluation run, bound 1:1 to a Job.
// Results are written by the batch job itself; the monitor only flips statuses.
type Evaluation struct {
	ID             string                 `gorm:"primaryKey;column:id;size:36" json:"id"`
	ModelID        string                 `gorm:"column:model_id;size:36;not null;index" json:"modelId"`
	JobID          string                 `gorm:"column:job_id;size:36;not null;index" json:"jobId"`
	EvaluationPath string                 `gorm:"column:evaluation_path;size:500;not null" json:"evaluationPath"`
	Configurations []string               `gorm:"column:configurations;serializer:json" json:"configurations"`
	Status         EvaluationStatus       `gorm:"column:status;size:20;not null;check:status IN ('PENDING','EVALUATING','COMPLETED','FAILED')" json:"status"`
	Results        map[string]interface{} `gorm:"column:results;serializer:json" json:"results,omitempty"`
	StartTime      *time.Time             `gorm:"column:start_time" json:"startTime,omitempty"`
	EndTime        *time.Time             `gorm:"column:end_time" json:"endTime,omitempty"`
	ErrorMessage   *string                `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	CreatedAt      time.Time              `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the static table name for GORM.
func (Evaluation) TableName() string {
	return "evaluation"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ValidConfigurations is the allowed set for Evaluation.Configurations.
func ValidConfigurations() []string {
	return []string{Config2D, Config3DFullres, Config3DLowres, Config3DCascLowres}
}
