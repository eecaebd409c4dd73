package provision

import (
	"github.com/muurk/camprov/internal/camera"
)

// Observer receives progress events from a run, in order.
type Observer interface {
	// ReconnectAttempt is called before each login attempt, counting from 0
	ReconnectAttempt(address string, attempt int)

	// LoginFinished is called with each login attempt's result
	LoginFinished(address string, result camera.Result)

	// StepFinished is called once per executed step
	StepFinished(address string, outcome StepOutcome)

	// SessionLost is called when the retry budget is exhausted
	SessionLost(err *SessionLostError)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) ReconnectAttempt(string, int) {}
func (NopObserver) LoginFinished(string, camera.Result) {}
func (NopObserver) StepFinished(string, StepOutcome) {}
func (NopObserver) SessionLost(*SessionLostError) {}
