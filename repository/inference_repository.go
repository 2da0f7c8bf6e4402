package repository

import (
	"errors"
	"time"

	"strokesegapi/models"

	"gorm.io/gorm"
)

// InferenceUpdate enumerates the mutable columns of an Inference row. Nil
// fields are left untouched.
type InferenceUpdate struct {
	Status       *models.InferenceStatus
	EndTime      *time.Time
	ErrorMessage *string
}

func (u InferenceUpdate) toMap() map[string]interface{} {
	values := map[string]interface{}{}
	if u.Status != nil {
		values["status"] = *u.Status
	}
	if u.EndTime != nil {
		values["end_time"] = *u.EndTime
	}
	if u.ErrorMessage != nil {
		values["error_message"] = *u.ErrorMessage
	}
	if len(values) > 0 {
		values["updated_at"] = time.Now()
	}
	return values
}

// InferenceRepository provides data access operations for prediction records.
type InferenceRepository interface {
	Create(tx *gorm.DB, inference *models.Inference) error
	GetByPredictID(tx *gorm.DB, predictID string) (*models.Inference, error)
	GetByJobID(tx *gorm.DB, jobID string) (*models.Inference, error)
	List(tx *gorm.DB, limit, offset int) ([]models.Inference, error)
	Update(tx *gorm.DB, predictID string, update InferenceUpdate) error
}

type inferenceRepository struct {
	db *gorm.DB
}

// NewInferenceRepository creates a new inference repository backed by the given handle.
func NewInferenceRepository(db *gorm.DB) InferenceRepository {
	return &inferenceRepository{db: db}
}

func (r *inferenceRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *inferenceRepository) Create(tx *gorm.DB, inference *models.Inference) error {
	return r.handle(tx).Create(inference).Error
}

func (r *inferenceRepository) GetByPredictID(tx *gorm.DB, predictID string) (*models.Inference, error) {
	var inference models.Inference
	if err := r.handle(tx).Table(models.Inference{}.TableName()).Where("predict_id = ?", predictID).First(&inference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inference, nil
}

func (r *inferenceRepository) GetByJobID(tx *gorm.DB, jobID string) (*models.Inference, error) {
	var inference models.Inference
	if err := r.handle(tx).Table(models.Inference{}.TableName()).Where("job_id = ?", jobID).First(&inference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inference, nil
}

func (r *inferenceRepository) List(tx *gorm.DB, limit, offset int) ([]models.Inference, error) {
	var records []models.Inference
	if err := r.handle(tx).Table(models.Inference{}.TableName()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *inferenceRepository) Update(tx *gorm.DB, predictID string, update InferenceUpdate) error {
	values := update.toMap()
	if len(values) == 0 {
		return nil
	}
	result := r.handle(tx).Table(models.Inference{}.TableName()).Where("predict_id = ?", predictID).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
