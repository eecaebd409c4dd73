package provision

import (
	"github.com/muurk/camprov/internal/templates"
)

// Step names, in policy order
const (
	StepSetDeviceID    = "setDeviceId"
	StepSetTimeServer  = "setTimeServer"
	StepSetAdminUser   = "setAdminUser"
	StepDeleteRtspUser = "deleteRtspUser"
	StepSetRtspUser    = "setRtspUser"
	StepLogout         = "logout"
)

// Keys inside the base64 settings payload of the cameraId and ntp templates
const (
	payloadDeviceName = "name"
	payloadNTPPool    = "ntpPool"
)

// DefaultDeviceID is used when no device id label is given
const DefaultDeviceID = "99999"

// Shaper edits a step's request copy before it is sent.
type Shaper func(tmpl *templates.Template, target Target) error

// Step is one operation of the provisioning sequence.
type Step struct {
	// Name identifies the step in logs and reports
	Name string

	// Label is the operator-facing description
	Label string

	// Template is the request template sent for this step
	Template string

	// CausesSessionLoss marks steps after which the camera restarts its
	// management service, so the session must be re-established before the
	// next step
	CausesSessionLoss bool

	// EndsSession marks the logout step
	EndsSession bool

	// Shape is applied to the request copy before sending (optional)
	Shape Shaper
}

// DefaultPolicy returns the provisioning sequence. Order matters: admin and
// RTSP user changes must reach a camera that has re-accepted the session
// dropped by the previous step.
func DefaultPolicy() []Step {
	return []Step{
		{
			Name:     StepSetDeviceID,
			Label:    "Set device ID",
			Template: templates.DeviceID,
			Shape:    payloadField(payloadDeviceName, func(t Target) string { return t.DeviceID }),
		},
		{
			Name:              StepSetTimeServer,
			Label:             "Set NTP server",
			Template:          templates.TimeServer,
			CausesSessionLoss: true,
			Shape:             payloadField(payloadNTPPool, func(t Target) string { return t.TimeServer }),
		},
		{
			Name:              StepSetAdminUser,
			Label:             "Set admin user",
			Template:          templates.AdminUser,
			CausesSessionLoss: true,
		},
		{
			Name:              StepDeleteRtspUser,
			Label:             "Delete RTSP user",
			Template:          templates.DeleteRtspUser,
			CausesSessionLoss: true,
		},
		{
			Name:     StepSetRtspUser,
			Label:    "Set RTSP user",
			Template: templates.RtspUser,
		},
		{
			Name:        StepLogout,
			Label:       "Log out",
			Template:    templates.Logout,
			EndsSession: true,
		},
	}
}

// RequiredTemplates lists every template the policy and the session need
func RequiredTemplates(policy []Step) []string {
	names := []string{templates.Auth}
	for _, step := range policy {
		names = append(names, step.Template)
	}
	return names
}

func payloadField(field string, value func(Target) string) Shaper {
	return func(tmpl *templates.Template, target Target) error {
		return tmpl.SetPayloadField(field, value(target))
	}
}
