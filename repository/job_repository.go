package repository

import (
	"errors"
	"time"

	"strokesegapi/models"

	"gorm.io/gorm"
)

// JobUpdate enumerates the mutable columns of a Job row. Nil fields are
// left untouched.
type JobUpdate struct {
	Status       *models.JobStatus
	StartTime    *time.Time
	EndTime      *time.Time
	ErrorMessage *string
}

func (u JobUpdate) toMap() map[string]interface{} {
	values := map[string]interface{}{}
	if u.Status != nil {
		values["status"] = *u.Status
	}
	if u.StartTime != nil {
		values["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		values["end_time"] = *u.EndTime
	}
	if u.ErrorMessage != nil {
		values["error_message"] = *u.ErrorMessage
	}
	return values
}

// JobRepository provides data access operations for batch job records.
type JobRepository interface {
	Create(tx *gorm.DB, job *models.Job) error
	GetByID(tx *gorm.DB, id string) (*models.Job, error)
	GetBySbatchID(tx *gorm.DB, sbatchID string) (*models.Job, error)
	GetActiveJobs(tx *gorm.DB) ([]models.Job, error)
	GetActiveJobsByKind(tx *gorm.DB, kind models.JobKind) ([]models.Job, error)
	Update(tx *gorm.DB, id string, update JobUpdate) error
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository backed by the given handle.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *jobRepository) Create(tx *gorm.DB, job *models.Job) error {
	return r.handle(tx).Create(job).Error
}

func (r *jobRepository) GetByID(tx *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	if err := r.handle(tx).Table(models.Job{}.TableName()).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) GetBySbatchID(tx *gorm.DB, sbatchID string) (*models.Job, error) {
	var job models.Job
	if err := r.handle(tx).Table(models.Job{}.TableName()).Where("sbatch_id = ?", sbatchID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) GetActiveJobs(tx *gorm.DB) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.handle(tx).Table(models.Job{}.TableName()).
		Where("status IN ?", []models.JobStatus{models.JobStatusPending, models.JobStatusRunning}).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) GetActiveJobsByKind(tx *gorm.DB, kind models.JobKind) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.handle(tx).Table(models.Job{}.TableName()).
		Where("status IN ?", []models.JobStatus{models.JobStatusPending, models.JobStatusRunning}).
		Where("job_type = ?", kind).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) Update(tx *gorm.DB, id string, update JobUpdate) error {
	values := update.toMap()
	if len(values) == 0 {
		return nil
	}
	result := r.handle(tx).Table(models.Job{}.TableName()).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
