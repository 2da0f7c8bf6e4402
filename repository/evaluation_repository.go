package repository

import (
	"encoding/json"
	"errors"
	"time"

	"strokesegapi/models"

	"gorm.io/gorm"
)

// EvaluationUpdate enumerates the mutable columns of an Evaluation row. Nil
// fields are left untouched.
type EvaluationUpdate struct {
	Status       *models.EvaluationStatus
	Results      map[string]interface{}
	EndTime      *time.Time
	ErrorMessage *string
}

func (u EvaluationUpdate) toMap() map[string]interface{} {
	values := map[string]interface{}{}
	if u.Status != nil {
		values["status"] = *u.Status
	}
	if u.Results != nil {
		// Column updates bypass the model serializer, so encode here.
		if data, err := json.Marshal(u.Results); err == nil {
			values["results"] = string(data)
		}
	}
	if u.EndTime != nil {
		values["end_time"] = *u.EndTime
	}
	if u.ErrorMessage != nil {
		values["error_message"] = *u.ErrorMessage
	}
	return values
}

// EvaluationRepository provides data access operations for evaluation records.
type EvaluationRepository interface {
	Create(tx *gorm.DB, evaluation *models.Evaluation) error
	GetByID(tx *gorm.DB, id string) (*models.Evaluation, error)
	GetByJobID(tx *gorm.DB, jobID string) (*models.Evaluation, error)
	List(tx *gorm.DB, limit, offset int) ([]models.Evaluation, error)
	Update(tx *gorm.DB, id string, update EvaluationUpdate) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository creates a new evaluation repository backed by the given handle.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *evaluationRepository) Create(tx *gorm.DB, evaluation *models.Evaluation) error {
	return r.handle(tx).Create(evaluation).Error
}

func (r *evaluationRepository) GetByID(tx *gorm.DB, id string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.handle(tx).Table(models.Evaluation{}.TableName()).Where("id = ?", id).First(&evaluation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &evaluation, nil
}

func (r *evaluationRepository) GetByJobID(tx *gorm.DB, jobID string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.handle(tx).Table(models.Evaluation{}.TableName()).Where("job_id = ?", jobID).First(&evaluation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &evaluation, nil
}

func (r *evaluationRepository) List(tx *gorm.DB, limit, offset int) ([]models.Evaluation, error) {
	var records []models.Evaluation
	if err := r.handle(tx).Table(models.Evaluation{}.TableName()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *evaluationRepository) Update(tx *gorm.DB, id string, update EvaluationUpdate) error {
	values := update.toMap()
	if len(values) == 0 {
		return nil
	}
	result := r.handle(tx).Table(models.Evaluation{}.TableName()).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
