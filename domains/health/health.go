package health

import (
	"context"
	"time"
)

type Status string

const (
	StatusOk      Status = "OK"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

// Component is the health of one infrastructure dependency.
type Component struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Report is the aggregate served on the health endpoint.
type Report struct {
	Status     Status           `json:"status"`
	Components []Component      `json:"components"`
	Queue      map[string]int64 `json:"queue,omitempty"`
}

type IHealthUsecase interface {
	// Check probes every dependency. The report status is ERROR when any
	// required component fails; optional components only degrade it.
	Check(ctx context.Context) Report
	// Live is the cheap liveness probe, no dependency calls.
	Live(ctx context.Context) Component
}
