package repository

import (
	"errors"

	"strokesegapi/models"

	"gorm.io/gorm"
)

// ModelRepository provides data access operations for trained model records.
type ModelRepository interface {
	Create(tx *gorm.DB, model *models.Model) error
	GetByID(tx *gorm.DB, id string) (*models.Model, error)
	GetByName(tx *gorm.DB, name string) (*models.Model, error)
	GetByTrainingID(tx *gorm.DB, trainingID string) (*models.Model, error)
}

type modelRepository struct {
	db *gorm.DB
}

// NewModelRepository creates a new model repository backed by the given handle.
func NewModelRepository(db *gorm.DB) ModelRepository {
	return &modelRepository{db: db}
}

func (r *modelRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *modelRepository) Create(tx *gorm.DB, model *models.Model) error {
	return r.handle(tx).Create(model).Error
}

func (r *modelRepository) GetByID(tx *gorm.DB, id string) (*models.Model, error) {
	var model models.Model
	if err := r.handle(tx).Table(models.Model{}.TableName()).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *modelRepository) GetByName(tx *gorm.DB, name string) (*models.Model, error) {
	var model models.Model
	if err := r.handle(tx).Table(models.Model{}.TableName()).Where("model_name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

// GetByTrainingID is the idempotency guard for the training monitor: at most
// one model may ever be derived from one training run.
func (r *modelRepository) GetByTrainingID(tx *gorm.DB, trainingID string) (*models.Model, error) {
	var model models.Model
	if err := r.handle(tx).Table(models.Model{}.TableName()).Where("training_id = ?", trainingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}
