// Package logging provides structured logging for camprov.
//
// This package wraps zap with convenience functions for the patterns used by
// the camera client and the provisioning runner. Logging is silent unless a
// level is requested, so the operator-facing step lines stay readable; zap
// output goes to stderr.
//
// # Log Levels
//
//   - Debug: request and response bodies (truncated, non-printable bytes masked)
//   - Info: reconnect attempts, successful steps
//   - Warn: failed steps, failed logins
//   - Error: run-aborting failures
//
// # Configuration
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// An empty level falls back to the CAMPROV_LOG_LEVEL environment variable.
//
// # Specialized Logging
//
//	logging.LogRequest(addr, "cameraId", body, true)
//	logging.LogResponse(addr, "cameraId", 200, respBody)
//	logging.LogReconnectAttempt(addr, 2, 5)
//	logging.LogStep(addr, "setTimeServer", false, 500, err)
package logging
