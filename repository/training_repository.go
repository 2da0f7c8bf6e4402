package repository

import (
	"errors"
	"time"

	"strokesegapi/models"

	"gorm.io/gorm"
)

// TrainingUpdate enumerates the mutable columns of a Training row. Nil
// fields are left untouched.
type TrainingUpdate struct {
	Status       *models.TrainingStatus
	Progress     *float64
	EndTime      *time.Time
	ErrorMessage *string
}

func (u TrainingUpdate) toMap() map[string]interface{} {
	values := map[string]interface{}{}
	if u.Status != nil {
		values["status"] = *u.Status
	}
	if u.Progress != nil {
		values["progress"] = *u.Progress
	}
	if u.EndTime != nil {
		values["end_time"] = *u.EndTime
	}
	if u.ErrorMessage != nil {
		values["error_message"] = *u.ErrorMessage
	}
	return values
}

// TrainingRepository provides data access operations for training records.
type TrainingRepository interface {
	Create(tx *gorm.DB, training *models.Training) error
	GetByID(tx *gorm.DB, id string) (*models.Training, error)
	GetByJobID(tx *gorm.DB, jobID string) (*models.Training, error)
	List(tx *gorm.DB, limit, offset int) ([]models.Training, error)
	Update(tx *gorm.DB, id string, update TrainingUpdate) error
}

type trainingRepository struct {
	db *gorm.DB
}

// NewTrainingRepository creates a new training repository backed by the given handle.
func NewTrainingRepository(db *gorm.DB) TrainingRepository {
	return &trainingRepository{db: db}
}

func (r *trainingRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *trainingRepository) Create(tx *gorm.DB, training *models.Training) error {
	return r.handle(tx).Create(training).Error
}

func (r *trainingRepository) GetByID(tx *gorm.DB, id string) (*models.Training, error) {
	var training models.Training
	if err := r.handle(tx).Table(models.Training{}.TableName()).Where("id = ?", id).First(&training).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &training, nil
}

func (r *trainingRepository) GetByJobID(tx *gorm.DB, jobID string) (*models.Training, error) {
	var training models.Training
	if err := r.handle(tx).Table(models.Training{}.TableName()).Where("job_id = ?", jobID).First(&training).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &training, nil
}

func (r *trainingRepository) List(tx *gorm.DB, limit, offset int) ([]models.Training, error) {
	var trainings []models.Training
	if err := r.handle(tx).Table(models.Training{}.TableName()).
		Order("start_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&trainings).Error; err != nil {
		return nil, err
	}
	return trainings, nil
}

func (r *trainingRepository) Update(tx *gorm.DB, id string, update TrainingUpdate) error {
	values := update.toMap()
	if len(values) == 0 {
		return nil
	}
	result := r.handle(tx).Table(models.Training{}.TableName()).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
