package poller

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"strokesegapi/models"
	"strokesegapi/repository"
	"strokesegapi/services/slurm"

	"github.com/DATA-DOG/go-sqlmock"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// fakeClient serves canned job info keyed by sbatch id.
type fakeClient struct {
	infos map[string]*slurm.JobInfo
	err   error
}

func (f *fakeClient) Submit(ctx context.Context, script string) (string, error) {
	return "", nil
}

func (f *fakeClient) GetJobInfo(ctx context.Context, sbatchID string) (*slurm.JobInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.infos[sbatchID], nil
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gmysql.New(gmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("Failed to open gorm: %v", err)
	}
	return db, mock
}

func newTestDeps(db *gorm.DB, client slurm.Client) Deps {
	return Deps{
		DB:           db,
		Reconnect:    func() (*gorm.DB, error) { return db, nil },
		Client:       client,
		Jobs:         repository.NewJobRepository(db),
		Trainings:    repository.NewTrainingRepository(db),
		Models:       repository.NewModelRepository(db),
		Inferences:   repository.NewInferenceRepository(db),
		Evaluations:  repository.NewEvaluationRepository(db),
		PollInterval: time.Hour,
	}
}

func trainingColumns() []string {
	return []string{"id", "name", "images_path", "labels_path", "model_path", "job_id",
		"status", "progress", "start_time", "end_time", "error_message"}
}

func modelColumns() []string {
	return []string{"id", "training_id", "model_name", "model_path", "created_at"}
}

func inferenceColumns() []string {
	return []string{"predict_id", "model_id", "job_id", "input_data", "output_dir",
		"prediction", "status", "start_time", "end_time", "error_message", "created_at", "updated_at"}
}

// TestTrainingMonitor_CompletionTransaction tests that a completed training
// job updates the job, promotes the training, and registers the model in
// one transaction.
func TestTrainingMonitor_CompletionTransaction(t *testing.T) {
	db, mock := newTestDB(t)
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {
			SbatchID:       "100",
			State:          "COMPLETED",
			InternalStatus: models.JobStatusCompleted,
			StartTime:      &start,
			EndTime:        &end,
			ExitCode:       slurm.SuccessExitCode,
			IsFinished:     true,
			IsSuccessful:   true,
		},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `jobs` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `training` WHERE job_id = ?")).
		WillReturnRows(sqlmock.NewRows(trainingColumns()).
			AddRow("tr-1", "unet", nil, nil, "/models/unet/1", "job-1", "TRAINING", 0.0, &start, nil, nil))
	mock.ExpectExec("UPDATE `training` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `model` WHERE training_id = ?")).
		WillReturnRows(sqlmock.NewRows(modelColumns()))
	mock.ExpectExec("INSERT INTO `model`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusRunning, StartTime: &start}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// TestTrainingMonitor_CompletionIdempotent tests that an already-registered
// model suppresses the insert when the completion is re-applied.
func TestTrainingMonitor_CompletionIdempotent(t *testing.T) {
	db, mock := newTestDB(t)
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {
			SbatchID:       "100",
			State:          "COMPLETED",
			InternalStatus: models.JobStatusCompleted,
			EndTime:        &end,
			ExitCode:       slurm.SuccessExitCode,
			IsFinished:     true,
			IsSuccessful:   true,
		},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `jobs` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `training` WHERE job_id = ?")).
		WillReturnRows(sqlmock.NewRows(trainingColumns()).
			AddRow("tr-1", "unet", nil, nil, "/models/unet/1", "job-1", "TRAINING", 0.0, &start, nil, nil))
	mock.ExpectExec("UPDATE `training` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `model` WHERE training_id = ?")).
		WillReturnRows(sqlmock.NewRows(modelColumns()).
			AddRow("model-1", "tr-1", "unet_model", nil, &end))
	mock.ExpectCommit()

	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusRunning, StartTime: &start}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// TestTrainingMonitor_FailureTransaction tests that a failed training job
// flips both records with the error message in one transaction.
func TestTrainingMonitor_FailureTransaction(t *testing.T) {
	db, mock := newTestDB(t)
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {
			SbatchID:       "100",
			State:          "FAILED",
			InternalStatus: models.JobStatusFailed,
			StartTime:      &start,
			EndTime:        &end,
			ExitCode:       "1:0",
			IsFinished:     true,
			ErrorMessage:   "Job state: FAILED; Exit code: 1:0; Job failed with non-zero exit code",
		},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `jobs` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `training` WHERE job_id = ?")).
		WillReturnRows(sqlmock.NewRows(trainingColumns()).
			AddRow("tr-1", "unet", nil, nil, "/models/unet/1", "job-1", "TRAINING", 0.0, &start, nil, nil))
	mock.ExpectExec("UPDATE `training` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusRunning, StartTime: &start}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// TestMonitor_InvalidTransitionSkipped tests that an illegal transition
// issues no writes.
func TestMonitor_InvalidTransitionSkipped(t *testing.T) {
	db, mock := newTestDB(t)

	end := time.Now()
	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {
			SbatchID:       "100",
			State:          "COMPLETED",
			InternalStatus: models.JobStatusCompleted,
			EndTime:        &end,
			ExitCode:       slurm.SuccessExitCode,
			IsFinished:     true,
			IsSuccessful:   true,
		},
	}}

	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusPending}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Expected no SQL for invalid transition: %v", err)
	}
}

// TestMonitor_NotFoundCompletesPendingJob tests the tolerated shortcut: a
// job that left the queue while still PENDING completes directly.
func TestMonitor_NotFoundCompletesPendingJob(t *testing.T) {
	db, mock := newTestDB(t)
	end := time.Now()

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {
			SbatchID:       "100",
			State:          slurm.StateNotFound,
			InternalStatus: models.JobStatusCompleted,
			EndTime:        &end,
			ExitCode:       slurm.SuccessExitCode,
			Reason:         "Job completed and removed from SLURM queue",
			IsFinished:     true,
			IsSuccessful:   true,
		},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `jobs` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `training` WHERE job_id = ?")).
		WillReturnRows(sqlmock.NewRows(trainingColumns()).
			AddRow("tr-1", "unet", nil, nil, "/models/unet/1", "job-1", "TRAINING", 0.0, nil, nil, nil))
	mock.ExpectExec("UPDATE `training` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `model` WHERE training_id = ?")).
		WillReturnRows(sqlmock.NewRows(modelColumns()))
	mock.ExpectExec("INSERT INTO `model`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusPending}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// TestMonitor_NoChangeNoUpdate tests that an unchanged status with no new
// timestamps issues no writes.
func TestMonitor_NoChangeNoUpdate(t *testing.T) {
	db, mock := newTestDB(t)
	start := time.Now().Add(-time.Hour)

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {
			SbatchID:       "100",
			State:          "RUNNING",
			InternalStatus: models.JobStatusRunning,
			StartTime:      &start,
			ExitCode:       slurm.SuccessExitCode,
		},
	}}

	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusRunning, StartTime: &start}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Expected no SQL for unchanged job: %v", err)
	}
}

// TestPredictionMonitor_RunningBumpsInference tests the non-transactional
// PENDING to PROCESSING bump when an inference job starts running.
func TestPredictionMonitor_RunningBumpsInference(t *testing.T) {
	db, mock := newTestDB(t)
	start := time.Now()

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"200": {
			SbatchID:       "200",
			State:          "RUNNING",
			InternalStatus: models.JobStatusRunning,
			StartTime:      &start,
			ExitCode:       slurm.SuccessExitCode,
		},
	}}

	mock.ExpectExec("UPDATE `jobs` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `inference` WHERE job_id = ?")).
		WillReturnRows(sqlmock.NewRows(inferenceColumns()).
			AddRow("pr-1", "model-1", "job-2", "/data/in", "/data/out", nil, "PENDING", &start, nil, nil, start, start))
	mock.ExpectExec("UPDATE `inference` SET").WillReturnResult(sqlmock.NewResult(0, 1))

	monitor := NewPredictionMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-2", SbatchID: "200", Kind: models.JobKindInference, Status: models.JobStatusPending}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// TestPredictionMonitor_CompletionUpdatesStatusAndEndTimeOnly tests the
// terminal inference transaction: the Inference row carries the new status
// and end time, and nothing else; the prediction output belongs to the
// batch job.
func TestPredictionMonitor_CompletionUpdatesStatusAndEndTimeOnly(t *testing.T) {
	db, mock := newTestDB(t)
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"200": {
			SbatchID:       "200",
			State:          "COMPLETED",
			InternalStatus: models.JobStatusCompleted,
			StartTime:      &start,
			EndTime:        &end,
			ExitCode:       slurm.SuccessExitCode,
			IsFinished:     true,
			IsSuccessful:   true,
		},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `jobs` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `inference` WHERE job_id = ?")).
		WillReturnRows(sqlmock.NewRows(inferenceColumns()).
			AddRow("pr-1", "model-1", "job-2", "/data/in", "/data/out", nil, "PROCESSING", &start, nil, nil, start, start))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `inference` SET `end_time`=?,`status`=?,`updated_at`=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	monitor := NewPredictionMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-2", SbatchID: "200", Kind: models.JobKindInference, Status: models.JobStatusRunning, StartTime: &start}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// newPingableDB builds a gorm handle over a sqlmock connection that tracks
// ping expectations, so broken-connection behavior can be scripted.
func newPingableDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gmysql.New(gmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("Failed to open gorm: %v", err)
	}
	return db, mock
}

// TestMonitor_ReconnectOnBrokenConnection tests the self-heal path: a failed
// ping triggers exactly one reconnect, the fresh handle is installed, and
// the tick proceeds against it.
func TestMonitor_ReconnectOnBrokenConnection(t *testing.T) {
	broken, brokenMock := newPingableDB(t)
	brokenMock.ExpectPing().WillReturnError(errors.New("connection refused"))

	healthy, healthyMock := newTestDB(t)
	healthyMock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `jobs` WHERE status IN")).
		WillReturnRows(sqlmock.NewRows(jobColumnsForTest()))

	reconnects := 0
	deps := newTestDeps(broken, &fakeClient{})
	deps.Reconnect = func() (*gorm.DB, error) {
		reconnects++
		return healthy, nil
	}

	monitor := NewTrainingMonitor(deps)
	monitor.tick(context.Background())

	if reconnects != 1 {
		t.Errorf("Expected exactly one reconnect attempt, got %d", reconnects)
	}
	if monitor.currentDB() != healthy {
		t.Error("Expected the fresh handle to be installed after reconnect")
	}
	if err := brokenMock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations on broken handle: %v", err)
	}
	if err := healthyMock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations on fresh handle: %v", err)
	}
}

// TestMonitor_TickSkippedWhenReconnectFails tests that a reconnect failure
// skips the tick without killing the loop; the next tick tries again.
func TestMonitor_TickSkippedWhenReconnectFails(t *testing.T) {
	broken, brokenMock := newPingableDB(t)
	brokenMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	brokenMock.ExpectPing().WillReturnError(errors.New("connection refused"))

	reconnects := 0
	deps := newTestDeps(broken, &fakeClient{})
	deps.Reconnect = func() (*gorm.DB, error) {
		reconnects++
		return nil, errors.New("dial tcp: connection refused")
	}

	monitor := NewTrainingMonitor(deps)
	monitor.tick(context.Background())
	monitor.tick(context.Background())

	if reconnects != 2 {
		t.Errorf("Expected one reconnect attempt per tick, got %d", reconnects)
	}
	if monitor.currentDB() != broken {
		t.Error("Expected the original handle to remain after failed reconnect")
	}
	if err := brokenMock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

// TestMonitor_ClientErrorIsolated tests that a scheduler query failure
// leaves the store untouched.
func TestMonitor_ClientErrorIsolated(t *testing.T) {
	db, mock := newTestDB(t)

	client := &fakeClient{err: context.DeadlineExceeded}
	monitor := NewTrainingMonitor(newTestDeps(db, client))
	job := models.Job{ID: "job-1", SbatchID: "100", Kind: models.JobKindTraining, Status: models.JobStatusRunning}
	monitor.updateJob(context.Background(), &job)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Expected no SQL on client error: %v", err)
	}
}
