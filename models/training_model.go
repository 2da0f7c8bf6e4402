package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrainingStatus is the lifecycle state of a model training run.
type TrainingStatus string

// Training lifecycle states. TRAINED and FAILED are terminal.
const (
	TrainingStatusTraining TrainingStatus = "TRAINING"
	TrainingStatusTrained  TrainingStatus = "TRAINED"
	TrainingStatusFailed   TrainingStatus = "FAILED"
)

// Training is the domain record for one model training run, bound 1:1 to a Job.
type Training struct {
	ID           string         `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name         string         `gorm:"column:name;size:255;not null" json:"name"`
	ImagesPath   *string        `gorm:"column:images_path;size:500" json:"imagesPath,omitempty"`
	LabelsPath   *string        `gorm:"column:labels_path;size:500" json:"labelsPath,omitempty"`
	ModelPath    string         `gorm:"column:model_path;size:500" json:"modelPath"`
	JobID        string         `gorm:"column:job_id;size:36;not null;index" json:"jobId"`
	Status       TrainingStatus `gorm:"column:status;size:20;not null;check:status IN ('TRAINING','TRAINED','FAILED')" json:"status"`
	Progress     float64        `gorm:"column:progress;default:0" json:"progress"`
	StartTime    *time.Time     `gorm:"column:start_time" json:"startTime,omitempty"`
	EndTime      *time.Time     `gorm:"column:end_time" json:"endTime,omitempty"`
	ErrorMessage *string        `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
}

// TableName specifies the static table name for GORM.
func (Training) TableName() string {
	return "training"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (t *Training) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
