package poller

import (
	"context"
	"sync"

	"strokesegapi/pkg/logger"
	"strokesegapi/services/slurm"
)

// Manager owns one monitor per job kind and coordinates their lifecycle.
// All monitors share the same record store and scheduler client.
type Manager struct {
	monitors []*Monitor

	mu      sync.Mutex
	running bool
}

// NewManager wires the three kind monitors over the shared dependencies.
func NewManager(deps Deps) *Manager {
	return &Manager{
		monitors: []*Monitor{
			NewTrainingMonitor(deps),
			NewPredictionMonitor(deps),
			NewEvaluationMonitor(deps),
		},
	}
}

// Start launches all monitors concurrently. If any monitor fails to start,
// the ones already running are stopped and the first error is returned.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		logger.Warnf("Job monitors are already running")
		return nil
	}

	logger.Infof("Starting %d job monitors", len(m.monitors))

	var wg sync.WaitGroup
	errs := make([]error, len(m.monitors))
	for i, monitor := range m.monitors {
		wg.Add(1)
		go func(i int, monitor *Monitor) {
			defer wg.Done()
			errs[i] = monitor.Start()
		}(i, monitor)
	}
	wg.Wait()

	var firstErr error
	for i, err := range errs {
		if err != nil && firstErr == nil {
			logger.Errorf("Failed to start %s monitor: %v", m.monitors[i].Kind(), err)
			firstErr = err
		}
	}
	if firstErr != nil {
		for i, err := range errs {
			if err == nil {
				m.monitors[i].Stop()
			}
		}
		return firstErr
	}

	m.running = true
	logger.Infof("All job monitors started successfully")
	return nil
}

// Stop halts all monitors and waits for their loops to end.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		logger.Warnf("Job monitors are not running")
		return
	}

	logger.Infof("Stopping job monitors")
	var wg sync.WaitGroup
	for _, monitor := range m.monitors {
		wg.Add(1)
		go func(monitor *Monitor) {
			defer wg.Done()
			monitor.Stop()
		}(monitor)
	}
	wg.Wait()

	m.running = false
	logger.Infof("All job monitors stopped")
}

// IsRunning reports whether the manager considers itself started and every
// monitor loop is alive.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if !running {
		return false
	}
	for _, monitor := range m.monitors {
		if !monitor.IsRunning() {
			return false
		}
	}
	return true
}

// PollOnce queries the scheduler for one job without mutating anything. The
// job's kind determines which monitor answers; an unknown id yields nil.
func (m *Manager) PollOnce(ctx context.Context, jobID string) (*slurm.JobInfo, error) {
	for _, monitor := range m.monitors {
		info, err := monitor.PollOnce(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, nil
}

// ManagerStatus reports the observable state of the manager and its monitors.
type ManagerStatus struct {
	ManagerRunning bool            `json:"managerRunning"`
	Monitors       []MonitorStatus `json:"monitors"`
}

// Status returns a snapshot of the manager and all monitors.
func (m *Manager) Status() ManagerStatus {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	statuses := make([]MonitorStatus, 0, len(m.monitors))
	for _, monitor := range m.monitors {
		statuses = append(statuses, monitor.Status())
	}
	return ManagerStatus{
		ManagerRunning: running,
		Monitors:       statuses,
	}
}
