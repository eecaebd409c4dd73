// Package config manages camprov's user configuration and environment intake.
//
// The YAML profile stores run defaults (login name, NTP server, timeouts,
// reconnect budget, template file) and a per-address provisioning history.
// Files follow OS-specific conventions:
//   - Linux: $XDG_CONFIG_HOME/camprov/config.yaml or $HOME/.config/camprov/config.yaml
//   - macOS: $HOME/.config/camprov/config.yaml
//   - Windows: %LOCALAPPDATA%\camprov\config.yaml
//
// # Security
//
// Camera passwords and session cookies are NEVER stored. Credentials are read
// per run from LGN and PSWD, optionally loaded from a .env file with LoadEnv.
//
// # Precedence
//
// Command-line flags override the environment, which overrides the profile,
// which overrides built-in defaults.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
