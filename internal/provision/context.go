package provision

import (
	"github.com/muurk/camprov/internal/camera"
)

// Target holds the per-run values injected into requests.
type Target struct {
	Address    string
	DeviceID   string
	TimeServer string
}

// RunContext is created once per run. The session's token is its only
// mutable state.
type RunContext struct {
	Target  Target
	Session *camera.Session
}

// NewRunContext creates a run context, defaulting the device id
func NewRunContext(target Target, session *camera.Session) *RunContext {
	if target.DeviceID == "" {
		target.DeviceID = DefaultDeviceID
	}
	return &RunContext{Target: target, Session: session}
}
