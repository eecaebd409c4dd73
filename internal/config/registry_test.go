package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "camprov") {
		t.Errorf("GetConfigDir() = %v, should contain 'camprov'", configDir)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if want := filepath.Join(dir, "camprov", "config.yaml"); configPath != want {
		t.Errorf("GetConfigPath() = %v, want %v", configPath, want)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("DiscoverTimeout = %v, want 5", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistryRecordRun(t *testing.T) {
	reg := NewRegistry()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	failed := []string{"setTimeServer"}
	reg.RecordRun("172.31.0.241", "31321312", OutcomePartial, failed, at)
	failed[0] = "mutated"

	device := reg.GetDevice("172.31.0.241")
	if device == nil {
		t.Fatal("device should exist after RecordRun")
	}
	if device.DeviceID != "31321312" || device.LastOutcome != OutcomePartial || !device.LastRun.Equal(at) {
		t.Errorf("device = %+v", device)
	}
	if len(device.FailedSteps) != 1 || device.FailedSteps[0] != "setTimeServer" {
		t.Errorf("FailedSteps = %v, want [setTimeServer]", device.FailedSteps)
	}

	reg.RecordRun("172.31.0.241", "31321312", OutcomeProvisioned, nil, at.Add(time.Hour))
	if device.Runs != 2 {
		t.Errorf("Runs = %d, want 2", device.Runs)
	}
	if device.FailedSteps != nil {
		t.Errorf("FailedSteps = %v, want none", device.FailedSteps)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.Preferences.Username = "admin"
	reg.Preferences.TimeServer = "10.0.0.1"
	reg.Preferences.RequestTimeout = 3 * time.Second
	reg.Preferences.SettleDelay = 1500 * time.Millisecond
	reg.Preferences.MaxReconnectAttempts = 8
	reg.RecordRun("172.31.0.241", "99999", OutcomeSessionLost, nil, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := reg.saveTo(path); err != nil {
		t.Fatalf("saveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "request_timeout: 3s") {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	loaded, err := loadRegistryFromFile(path)
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}

	prefs := loaded.Preferences
	if prefs.Username != "admin" || prefs.TimeServer != "10.0.0.1" {
		t.Errorf("preferences = %+v", prefs)
	}
	if prefs.RequestTimeout != 3*time.Second || prefs.SettleDelay != 1500*time.Millisecond {
		t.Errorf("durations = %v, %v", prefs.RequestTimeout, prefs.SettleDelay)
	}
	if prefs.MaxReconnectAttempts != 8 {
		t.Errorf("MaxReconnectAttempts = %d, want 8", prefs.MaxReconnectAttempts)
	}

	device := loaded.GetDevice("172.31.0.241")
	if device == nil || device.LastOutcome != OutcomeSessionLost || device.Runs != 1 {
		t.Errorf("device = %+v", device)
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	reg, err := loadRegistryFromFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}
	if reg.Version != 1 || reg.Preferences == nil {
		t.Errorf("expected default registry, got %+v", reg)
	}
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "version: [", "failed to parse"},
		{"wrong version", "version: 2\n", "unsupported config version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := loadRegistryFromFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistry_FillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := loadRegistryFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Devices == nil || reg.Preferences == nil {
		t.Errorf("sections should be initialized: %+v", reg)
	}
}
