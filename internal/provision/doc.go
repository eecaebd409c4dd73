// Package provision drives a camera through the fixed provisioning sequence.
//
// A run logs in, then executes each Step of the policy in order: set the
// device id, set the NTP server, replace the admin user, delete and re-add
// the RTSP user, and log out. The camera restarts its management service
// after the NTP, admin and RTSP-delete steps, dropping the session, so the
// Runner re-establishes it through the Reconnector before continuing.
//
// # Failure Policy
//
// A failed step (HTTP error, network error, or a request that could not be
// built) is reported and the run continues. The only fatal condition is the
// Reconnector exhausting its login budget, which returns *SessionLostError
// together with the partial Report:
//
//	report, err := runner.Run(ctx)
//	if errors.Is(err, provision.ErrSessionLost) {
//	    // no session could be established; report.Aborted is set
//	}
//
// # Observing a Run
//
// Runner.Observer receives every login attempt, step outcome and session
// loss in order. The CLI renders these as operator lines; tests record them.
package provision
