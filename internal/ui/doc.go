// Package ui renders camprov's operator output.
//
// Output is line-oriented so it reads the same in a terminal, a CI log or a
// file. Printer implements provision.Observer and writes one line per event,
// prefixed with the camera address:
//
//	172.31.0.241: Connecting, attempt: 0
//	172.31.0.241: Login: OK
//	172.31.0.241: ✓ Set device ID: OK
//	172.31.0.241: ✗ Set NTP server: FAILED (camera error (HTTP 500))
//
// Header and Result render the banner and end-of-run summary boxes with
// Lipgloss. Colours are dropped automatically when stdout is not a terminal.
//
// # Logging Integration
//
// Structured zap logging is controlled via CAMPROV_LOG_LEVEL or --log-level
// and goes to stderr, so it never interleaves with these lines on stdout.
package ui
