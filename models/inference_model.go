package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InferenceStatus is the lifecycle state of a prediction run.
type InferenceStatus string

// Inference lifecycle states. COMPLETED and FAILED are terminal.
const (
	InferenceStatusPending    InferenceStatus = "PENDING"
	InferenceStatusProcessing InferenceStatus = "PROCESSING"
	InferenceStatusCompleted  InferenceStatus = "COMPLETED"
	InferenceStatusFailed     InferenceStatus = "FAILED"
)

// Inference is the domain record for one prediction run, bound 1:1 to a Job.
// The prediction output is written by the batch job itself; the monitor only
// flips statuses and timing.
// The primary key column keeps its historical name predict_id.
type Inference struct {
	PredictID    string          `gorm:"primaryKey;column:predict_id;size:36" json:"predictId"`
	ModelID      string          `gorm:"column:model_id;size:36;not null;index" json:"modelId"`
	JobID        string          `gorm:"column:job_id;size:36;not null;index" json:"jobId"`
	InputData    string          `gorm:"column:input_data;size:500;not null" json:"inputData"`
	OutputDir    string          `gorm:"column:output_dir;size:500" json:"outputDir"`
	Prediction   *string         `gorm:"column:prediction;type:text" json:"prediction,omitempty"`
	Status       InferenceStatus `gorm:"column:status;size:20;not null;check:status IN ('PENDING','PROCESSING','COMPLETED','FAILED')" json:"status"`
	StartTime    *time.Time      `gorm:"column:start_time" json:"startTime,omitempty"`
	EndTime      *time.Time      `gorm:"column:end_time" json:"endTime,omitempty"`
	ErrorMessage *string         `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Inference) TableName() string {
	return "inference"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (i *Inference) BeforeCreate(tx *gorm.DB) error {
	if i.PredictID == "" {
		i.PredictID = uuid.NewString()
	}
	return nil
}
