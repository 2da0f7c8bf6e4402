package poller

import (
	"sync"
	"time"

	"strokesegapi/pkg/logger"
	"strokesegapi/repository"
)

// watchdogInterval is how often the host checks that the monitors are alive.
const watchdogInterval = time.Minute

// Host runs the monitor manager as a background service of the process and
// exposes its health. It never restarts a dead manager on its own; the
// watchdog only reports the condition.
type Host struct {
	manager *Manager

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHost wraps a manager for background operation.
func NewHost(manager *Manager) *Host {
	return &Host{manager: manager}
}

// Start launches the manager and the watchdog. Calling Start on a running
// host logs and returns without error.
func (h *Host) Start() error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		logger.Warnf("Job monitor host already started")
		return nil
	}
	h.mu.Unlock()

	if err := h.manager.Start(); err != nil {
		return err
	}

	h.mu.Lock()
	h.started = true
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})
	h.mu.Unlock()

	go h.watchdog()
	logger.Infof("Job monitor host started")
	return nil
}

// Stop halts the watchdog and the manager. Safe to call on a stopped host.
func (h *Host) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	close(h.stopCh)
	done := h.doneCh
	h.mu.Unlock()

	<-done
	h.manager.Stop()
	logger.Infof("Job monitor host stopped")
}

// Manager exposes the underlying manager for read-only queries.
func (h *Host) Manager() *Manager {
	return h.manager
}

// Healthy reports whether the monitors are running and the record store is
// reachable through any monitor's handle.
func (h *Host) Healthy() bool {
	if !h.manager.IsRunning() {
		return false
	}
	for _, monitor := range h.manager.monitors {
		if err := repository.Ping(monitor.currentDB()); err != nil {
			return false
		}
		break
	}
	return true
}

// watchdog logs a detailed status report once if the manager stops
// unexpectedly while the host is still supposed to be running.
func (h *Host) watchdog() {
	defer close(h.doneCh)

	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()

	reported := false
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			if h.manager.IsRunning() {
				reported = false
				continue
			}
			if reported {
				continue
			}
			reported = true
			status := h.manager.Status()
			logger.Errorf("Job monitors stopped unexpectedly - manager running: %t", status.ManagerRunning)
			for _, monitor := range status.Monitors {
				logger.Errorf("Monitor %s - running: %t, interval: %s, state: %s",
					monitor.JobType, monitor.IsRunning, monitor.PollInterval, monitor.TaskState)
			}
		}
	}
}
