package poller

import (
	"context"
	"regexp"
	"testing"
	"time"

	"strokesegapi/models"
	"strokesegapi/services/slurm"

	"github.com/DATA-DOG/go-sqlmock"
)

// TestManager_StartStop tests the lifecycle of all three monitors.
func TestManager_StartStop(t *testing.T) {
	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)

	manager := NewManager(newTestDeps(db, &fakeClient{}))

	if manager.IsRunning() {
		t.Error("Expected manager not running before start")
	}
	if err := manager.Start(); err != nil {
		t.Fatalf("Unexpected start error: %v", err)
	}
	if !manager.IsRunning() {
		t.Error("Expected manager running after start")
	}

	// Second start is a no-op.
	if err := manager.Start(); err != nil {
		t.Errorf("Unexpected error on repeated start: %v", err)
	}

	status := manager.Status()
	if !status.ManagerRunning {
		t.Error("Expected running manager status")
	}
	if len(status.Monitors) != 3 {
		t.Fatalf("Expected 3 monitors, got %d", len(status.Monitors))
	}
	kinds := map[string]bool{}
	for _, m := range status.Monitors {
		kinds[m.JobType] = true
		if !m.IsRunning {
			t.Errorf("Expected %s monitor running", m.JobType)
		}
	}
	for _, kind := range []string{"TRAINING", "INFERENCE", "EVALUATION"} {
		if !kinds[kind] {
			t.Errorf("Expected a %s monitor", kind)
		}
	}

	manager.Stop()
	if manager.IsRunning() {
		t.Error("Expected manager stopped after stop")
	}

	// Second stop is a no-op.
	manager.Stop()
}

// TestManager_PollOnce tests read-only polling routed by job kind.
func TestManager_PollOnce(t *testing.T) {
	db, mock := newTestDB(t)

	start := time.Now()
	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {SbatchID: "100", State: "RUNNING", InternalStatus: models.JobStatusRunning, StartTime: &start},
	}}
	manager := NewManager(newTestDeps(db, client))

	jobID := "6f1b24a0-9c1d-4e6a-8f30-1f2d3c4b5a69"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `jobs` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(jobColumnsForTest()).
			AddRow(jobID, "100", "TRAINING", "RUNNING", 0, 0, "", &start, nil, nil, start, start))

	info, err := manager.PollOnce(context.Background(), jobID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info == nil || info.State != "RUNNING" {
		t.Fatalf("Expected live running state, got %+v", info)
	}
}

// TestManager_PollOnce_BySbatchID tests polling with the scheduler-assigned id.
func TestManager_PollOnce_BySbatchID(t *testing.T) {
	db, mock := newTestDB(t)

	start := time.Now()
	client := &fakeClient{infos: map[string]*slurm.JobInfo{
		"100": {SbatchID: "100", State: "RUNNING", InternalStatus: models.JobStatusRunning, StartTime: &start},
	}}
	manager := NewManager(newTestDeps(db, client))

	jobID := "6f1b24a0-9c1d-4e6a-8f30-1f2d3c4b5a69"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `jobs` WHERE sbatch_id = ?")).
		WillReturnRows(sqlmock.NewRows(jobColumnsForTest()).
			AddRow(jobID, "100", "TRAINING", "RUNNING", 0, 0, "", &start, nil, nil, start, start))

	info, err := manager.PollOnce(context.Background(), "100")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info == nil || info.SbatchID != "100" {
		t.Fatalf("Expected live info for sbatch id 100, got %+v", info)
	}
}

// TestManager_PollOnce_InvalidID tests the id format guard.
func TestManager_PollOnce_InvalidID(t *testing.T) {
	db, _ := newTestDB(t)
	manager := NewManager(newTestDeps(db, &fakeClient{}))

	if _, err := manager.PollOnce(context.Background(), "not-a-uuid"); err == nil {
		t.Error("Expected error for malformed job id")
	}
}

// TestManager_PollOnce_UnknownJob tests that an unknown id yields nil.
func TestManager_PollOnce_UnknownJob(t *testing.T) {
	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)
	manager := NewManager(newTestDeps(db, &fakeClient{}))

	jobID := "6f1b24a0-9c1d-4e6a-8f30-1f2d3c4b5a69"
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `jobs` WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows(jobColumnsForTest()))
	}

	info, err := manager.PollOnce(context.Background(), jobID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info != nil {
		t.Errorf("Expected nil info for unknown job, got %+v", info)
	}
}

// TestHost_StartStop tests host idempotence and health reporting.
func TestHost_StartStop(t *testing.T) {
	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)

	host := NewHost(NewManager(newTestDeps(db, &fakeClient{})))

	if host.Healthy() {
		t.Error("Expected unhealthy host before start")
	}
	if err := host.Start(); err != nil {
		t.Fatalf("Unexpected start error: %v", err)
	}
	if !host.Healthy() {
		t.Error("Expected healthy host after start")
	}

	// Second start logs and returns.
	if err := host.Start(); err != nil {
		t.Errorf("Unexpected error on repeated start: %v", err)
	}

	host.Stop()
	if host.Healthy() {
		t.Error("Expected unhealthy host after stop")
	}

	// Second stop is a no-op.
	host.Stop()
}

func jobColumnsForTest() []string {
	return []string{"id", "sbatch_id", "job_type", "status", "fold_index", "task_number",
		"sbatch_content", "start_time", "end_time", "error_message", "created_at", "updated_at"}
}
