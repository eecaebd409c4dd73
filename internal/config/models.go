package config

import "time"

// Outcome is the result of the last provisioning run against a camera.
type Outcome string

const (
	OutcomeProvisioned Outcome = "provisioned"  // every step accepted
	OutcomePartial     Outcome = "partial"      // finished with failed steps
	OutcomeSessionLost Outcome = "session_lost" // aborted, no session could be established
	OutcomeCancelled   Outcome = "cancelled"    // interrupted by the operator
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by camera address
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is the provisioning history of one camera.
// Session tokens are never recorded here.
type Device struct {
	DeviceID    string    `yaml:"device_id,omitempty"`    // Last device id label applied
	LastRun     time.Time `yaml:"last_run,omitempty"`     // When the last run finished
	LastOutcome Outcome   `yaml:"last_outcome,omitempty"` // Outcome of the last run
	FailedSteps []string  `yaml:"failed_steps,omitempty"` // Steps the camera rejected on the last run
	Runs        int       `yaml:"runs"`                   // Number of recorded runs
}

// Preferences represents application-wide defaults. Zero values mean "use
// the built-in default".
type Preferences struct {
	Username             string        `yaml:"username,omitempty"`               // Default login (LGN overrides)
	TimeServer           string        `yaml:"time_server,omitempty"`            // Default NTP server (NTP overrides)
	DefaultDeviceID      string        `yaml:"default_device_id,omitempty"`      // Used when --id is not given
	RequestTimeout       time.Duration `yaml:"request_timeout,omitempty"`        // Per-request timeout
	SettleDelay          time.Duration `yaml:"settle_delay,omitempty"`           // Pause after every request
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts,omitempty"` // Login retries after the first attempt
	TemplatesPath        string        `yaml:"templates_path,omitempty"`         // Template file overriding the embedded set
	DiscoverTimeout      int           `yaml:"discover_timeout,omitempty"`       // mDNS scan timeout in seconds
	// Password is NEVER stored in the config file
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DiscoverTimeout: 5,
	}
}

// GetDevice retrieves the history for a camera address.
// Returns nil if the camera has never been provisioned.
func (r *Registry) GetDevice(address string) *Device {
	return r.Devices[address]
}

// EnsureDevice returns the history entry for address, creating it if needed.
func (r *Registry) EnsureDevice(address string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[address]; exists {
		return device
	}

	device := &Device{}
	r.Devices[address] = device
	return device
}

// RecordRun stores the outcome of a provisioning run.
func (r *Registry) RecordRun(address, deviceID string, outcome Outcome, failedSteps []string, at time.Time) {
	device := r.EnsureDevice(address)
	device.DeviceID = deviceID
	device.LastRun = at
	device.LastOutcome = outcome
	device.FailedSteps = append([]string(nil), failedSteps...)
	device.Runs++
}
