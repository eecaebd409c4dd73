package provision

import (
	"time"

	"github.com/muurk/camprov/internal/camera"
)

// StepOutcome records what happened to one step.
type StepOutcome struct {
	Step     Step
	Result   camera.Result
	Err      error // request shaping or send failure; nil on success
	Duration time.Duration
}

// Succeeded reports whether the camera accepted the step
func (o StepOutcome) Succeeded() bool {
	return o.Err == nil && o.Result.Succeeded
}

// Report summarizes a provisioning run.
type Report struct {
	Address  string
	DeviceID string

	Steps []StepOutcome

	// Reconnects counts completed session (re-)establishments, including the
	// initial login
	Reconnects int

	// LoginAttempts counts every login request sent
	LoginAttempts int

	// Aborted is set when the run stopped because the session was lost
	Aborted bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the outcomes of steps the camera did not accept
func (r *Report) Failed() []StepOutcome {
	var failed []StepOutcome
	for _, o := range r.Steps {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// FailedNames returns the names of failed steps
func (r *Report) FailedNames() []string {
	var names []string
	for _, o := range r.Failed() {
		names = append(names, o.Step.Name)
	}
	return names
}

// Clean reports whether the run finished with every step accepted
func (r *Report) Clean() bool {
	return !r.Aborted && len(r.Failed()) == 0
}

// Duration returns the wall time of the run
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
