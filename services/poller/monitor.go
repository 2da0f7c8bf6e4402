package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"strokesegapi/models"
	"strokesegapi/pkg/apperrors"
	"strokesegapi/pkg/logger"
	"strokesegapi/repository"
	"strokesegapi/services/slurm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stopGrace is how long Stop waits for an in-flight tick before abandoning it.
const stopGrace = 5 * time.Second

// Deps bundles the shared collaborators of all monitors.
type Deps struct {
	DB           *gorm.DB
	Reconnect    func() (*gorm.DB, error)
	Client       slurm.Client
	Jobs         repository.JobRepository
	Trainings    repository.TrainingRepository
	Models       repository.ModelRepository
	Inferences   repository.InferenceRepository
	Evaluations  repository.EvaluationRepository
	PollInterval time.Duration
}

// hooks is the per-kind behavior of a monitor: how to discover its jobs and
// how to apply a validated update. apply returns false to signal "retry next
// tick" without failing the loop.
type hooks struct {
	candidates func(db *gorm.DB) ([]models.Job, error)
	apply      func(ctx context.Context, db *gorm.DB, job *models.Job, info *slurm.JobInfo, current, next models.JobStatus) bool
}

// Monitor reconciles the scheduler state of one job kind with the record
// store. It runs one cooperative polling loop; errors on a single job never
// stop the loop, and database connectivity failures trigger one reconnect
// attempt before the next tick.
type Monitor struct {
	kind         models.JobKind
	client       slurm.Client
	jobs         repository.JobRepository
	reconnect    func() (*gorm.DB, error)
	pollInterval time.Duration
	hooks        hooks

	mu      sync.Mutex
	db      *gorm.DB
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newMonitor(kind models.JobKind, deps Deps, h hooks) *Monitor {
	interval := deps.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	m := &Monitor{
		kind:         kind,
		client:       deps.Client,
		jobs:         deps.Jobs,
		reconnect:    deps.Reconnect,
		pollInterval: interval,
		hooks:        h,
		db:           deps.DB,
	}
	logger.Infof("%s monitor initialized with %v polling interval", kind, interval)
	return m
}

// Kind returns the job kind this monitor owns.
func (m *Monitor) Kind() models.JobKind {
	return m.kind
}

// PollInterval returns the configured tick interval.
func (m *Monitor) PollInterval() time.Duration {
	return m.pollInterval
}

func (m *Monitor) currentDB() *gorm.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

func (m *Monitor) setDB(db *gorm.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.db = db
}

// ensureDatabase validates the store handle and performs at most one
// reconnect attempt when it is broken.
func (m *Monitor) ensureDatabase() error {
	if err := repository.Ping(m.currentDB()); err == nil {
		return nil
	} else {
		logger.Warnf("%s monitor: database connection issue: %v", m.kind, err)
	}

	db, err := m.reconnect()
	if err != nil {
		return fmt.Errorf("failed to reconnect database: %w", err)
	}
	m.setDB(db)
	logger.Infof("%s monitor: database reconnected successfully", m.kind)
	return nil
}

// Start begins the polling loop. Starting an already-running monitor logs
// and returns; a broken database connection that cannot be re-established
// fails the start.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		logger.Warnf("%s monitor is already running", m.kind)
		return nil
	}
	m.mu.Unlock()

	if err := m.ensureDatabase(); err != nil {
		logger.Errorf("%s monitor: failed to establish database connection: %v", m.kind, err)
		return err
	}
	logger.Infof("%s monitor: database connection established", m.kind)

	m.mu.Lock()
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.loop()
	logger.Infof("%s monitor started successfully", m.kind)
	return nil
}

// Stop halts the polling loop, giving any in-flight tick a grace period
// before its context is cancelled. Subprocess calls run to their own timeout.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		logger.Warnf("%s monitor is not running", m.kind)
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	select {
	case <-done:
	case <-time.After(stopGrace + time.Second):
		logger.Warnf("%s monitor stop timeout, abandoning in-flight tick", m.kind)
	}
	logger.Infof("%s monitor stopped", m.kind)
}

// IsRunning reports whether the polling loop is alive.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return false
	}
	select {
	case <-m.doneCh:
		return false
	default:
		return true
	}
}

func (m *Monitor) loop() {
	defer close(m.doneCh)
	logger.Infof("%s monitor polling loop started", m.kind)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		tickCtx, cancel := context.WithCancel(context.Background())
		tickDone := make(chan struct{})
		go func() {
			defer close(tickDone)
			m.tick(tickCtx)
		}()

		select {
		case <-tickDone:
			cancel()
		case <-m.stopCh:
			select {
			case <-tickDone:
			case <-time.After(stopGrace):
				logger.Warnf("%s monitor: cancelling in-flight tick", m.kind)
			}
			cancel()
			logger.Infof("%s monitor polling loop ended", m.kind)
			return
		}

		select {
		case <-ticker.C:
		case <-m.stopCh:
			logger.Infof("%s monitor polling loop ended", m.kind)
			return
		}
	}
}

// tick is one reconciliation pass: self-heal the store handle, discover
// candidates, re-filter to monitorable states, and update each job in
// isolation.
func (m *Monitor) tick(ctx context.Context) {
	if err := m.ensureDatabase(); err != nil {
		logger.Errorf("%s monitor: skipping tick, database unavailable: %v", m.kind, err)
		return
	}

	candidates, err := m.hooks.candidates(m.currentDB())
	if err != nil {
		logger.Errorf("%s monitor: failed to discover jobs: %v", m.kind, err)
		if apperrors.IsConnectionError(err) {
			if rerr := m.ensureDatabase(); rerr != nil {
				logger.Errorf("%s monitor: reconnect failed: %v", m.kind, rerr)
			}
		}
		return
	}

	// The state machine is enforced at the apply site: drop terminal rows
	// even though candidate discovery already filters them.
	monitorable := candidates[:0:0]
	for _, job := range candidates {
		if slurm.ShouldMonitor(job.Status) {
			monitorable = append(monitorable, job)
		}
	}

	if len(monitorable) == 0 {
		logger.Debugf("%s monitor: no monitorable jobs to poll", m.kind)
		if skipped := len(candidates) - len(monitorable); skipped > 0 {
			logger.Debugf("%s monitor: skipped %d jobs in terminal states", m.kind, skipped)
		}
		return
	}

	logger.Infof("%s monitor: polling %d monitorable jobs (filtered from %d active jobs)",
		m.kind, len(monitorable), len(candidates))

	for i := range monitorable {
		m.updateJob(ctx, &monitorable[i])
		select {
		case <-ctx.Done():
			logger.Warnf("%s monitor: tick cancelled", m.kind)
			return
		default:
		}
	}
}

func (m *Monitor) updateJob(ctx context.Context, job *models.Job) {
	info, err := m.client.GetJobInfo(ctx, job.SbatchID)
	if err != nil {
		logger.Errorf("Error updating job %s (sbatch_id: %s): %v", job.ID, job.SbatchID, err)
		return
	}
	if info == nil {
		logger.Warnf("No job info returned for job %s (sbatch_id: %s)", job.ID, job.SbatchID)
		return
	}

	current := job.Status
	next := info.InternalStatus

	if info.State == slurm.StateNotFound {
		logger.Infof("Job %s (sbatch_id: %s) no longer in SLURM queue - marking as completed (was %s)",
			job.ID, job.SbatchID, current)
	}

	logger.Debugf("Job %s (sbatch_id: %s) - SLURM state: %s, Current status: %s, New status: %s",
		job.ID, job.SbatchID, info.State, current, next)

	if !slurm.IsValidTransition(current, next) {
		// A job can leave the queue before it was ever seen running; that
		// NOT_FOUND completion is the one tolerated shortcut.
		if !(info.State == slurm.StateNotFound && next == models.JobStatusCompleted) {
			logger.Errorf("Invalid state transition for job %s: %s -> %s. SLURM state: %s. Skipping update.",
				job.ID, current, next, info.State)
			return
		}
	}

	statusChanged := current != next
	timestampsNeedUpdate := (info.StartTime != nil && job.StartTime == nil) ||
		(info.EndTime != nil && job.EndTime == nil)

	if !statusChanged && !timestampsNeedUpdate {
		logger.Debugf("No updates needed for job %s - status unchanged: %s", job.ID, current)
		return
	}

	if m.hooks.apply(ctx, m.currentDB(), job, info, current, next) {
		if statusChanged {
			logger.Infof("Job %s (sbatch_id: %s) - %s", job.ID, job.SbatchID, slurm.TransitionReason(current, next, info))
		}
		if info.IsFinished {
			logger.Infof("Job %s reached terminal state: %s", job.ID, next)
		}
	} else {
		logger.Errorf("Failed to handle job update for %s", job.ID)
	}
}

// PollOnce queries the scheduler for one job owned by this monitor without
// mutating anything. The id may be the record UUID or the scheduler-assigned
// numeric id. Returns nil when the job is unknown or of another kind.
func (m *Monitor) PollOnce(ctx context.Context, jobID string) (*slurm.JobInfo, error) {
	var (
		job *models.Job
		err error
	)
	switch {
	case isUUID(jobID):
		job, err = m.jobs.GetByID(m.currentDB(), jobID)
	case isNumeric(jobID):
		job, err = m.jobs.GetBySbatchID(m.currentDB(), jobID)
	default:
		return nil, apperrors.New(apperrors.Invalid, "invalid job ID format")
	}
	if err != nil {
		return nil, err
	}
	if job == nil || job.Kind != m.kind {
		return nil, nil
	}

	return m.client.GetJobInfo(ctx, job.SbatchID)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MonitorStatus reports the observable state of one monitor.
type MonitorStatus struct {
	JobType      string `json:"jobType"`
	IsRunning    bool   `json:"isRunning"`
	PollInterval string `json:"pollInterval"`
	TaskState    string `json:"taskState"`
}

// Status returns the monitor's observable state.
func (m *Monitor) Status() MonitorStatus {
	state := "stopped"
	if m.IsRunning() {
		state = "running"
	}
	return MonitorStatus{
		JobType:      string(m.kind),
		IsRunning:    m.IsRunning(),
		PollInterval: m.pollInterval.String(),
		TaskState:    state,
	}
}

// jobUpdateFor builds the Job column update for a transition: the new
// status, timestamps that are newly known, and the composed error message
// on failures. Timestamps already set are never rewritten.
func jobUpdateFor(job *models.Job, info *slurm.JobInfo, next models.JobStatus) repository.JobUpdate {
	status := next
	update := repository.JobUpdate{Status: &status}
	if info.StartTime != nil && job.StartTime == nil {
		update.StartTime = info.StartTime
	}
	if info.EndTime != nil && job.EndTime == nil {
		update.EndTime = info.EndTime
	}
	if next == models.JobStatusFailed && info.ErrorMessage != "" {
		msg := info.ErrorMessage
		update.ErrorMessage = &msg
	}
	return update
}
