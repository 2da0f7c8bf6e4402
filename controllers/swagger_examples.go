package controllers

// Example request/response models for Swagger documentation

// StandardErrorResponse represents a standard error payload
type StandardErrorResponse struct {
	Error string `json:"error" example:"invalid training ID format"`
}

// HealthResponse represents the overall health payload
type HealthResponse struct {
	Status     string            `json:"status" example:"healthy"`
	Components map[string]string `json:"components"`
}

// DBHealthResponse represents the database health payload
type DBHealthResponse struct {
	Status     string         `json:"status" example:"healthy"`
	Pool       map[string]int `json:"pool"`
	ActiveJobs int            `json:"activeJobs" example:"2"`
}

// PollerHealthResponse represents the poller health payload
type PollerHealthResponse struct {
	Status string                `json:"status" example:"healthy"`
	Poller MonitorStatusResponse `json:"poller"`
}

// MonitorStatusResponse represents the monitor manager snapshot
type MonitorStatusResponse struct {
	ManagerRunning bool                `json:"managerRunning" example:"true"`
	Monitors       []MonitorStatusItem `json:"monitors"`
}

// MonitorStatusItem represents one monitor's observable state
type MonitorStatusItem struct {
	JobType      string `json:"jobType" example:"TRAINING"`
	IsRunning    bool   `json:"isRunning" example:"true"`
	PollInterval string `json:"pollInterval" example:"30s"`
	TaskState    string `json:"taskState" example:"running"`
}

// JobInfoResponse represents the live scheduler state of a job
type JobInfoResponse struct {
	SbatchID       string  `json:"sbatchId" example:"12345"`
	State          string  `json:"state" example:"RUNNING"`
	InternalStatus string  `json:"internalStatus" example:"RUNNING"`
	StartTime      *string `json:"startTime" example:"2025-01-01T10:00:00"`
	EndTime        *string `json:"endTime"`
	ExitCode       string  `json:"exitCode" example:"0:0"`
	Reason         string  `json:"reason" example:"None"`
	IsFinished     bool    `json:"isFinished" example:"false"`
	IsSuccessful   bool    `json:"isSuccessful" example:"false"`
	ErrorMessage   string  `json:"errorMessage"`
}
