package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is a trained model artifact, derived exactly once per successful training.
type Model struct {
	ID         string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	TrainingID string     `gorm:"column:training_id;size:36;not null;index" json:"trainingId"`
	ModelName  string     `gorm:"column:model_name;size:255;not null" json:"modelName"`
	ModelPath  *string    `gorm:"column:model_path;size:500" json:"modelPath,omitempty"`
	CreatedAt  *time.Time `gorm:"column:created_at" json:"createdAt,omitempty"`
}

// TableName specifies the static table name for GORM.
func (Model) TableName() string {
	return "model"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
