// Package camera talks to a single network camera's HTTP control endpoint.
//
// The camera exposes one JSON endpoint, POST http://<address>/mqtt. A
// successful login sets a session cookie which must be echoed on every later
// request until the camera restarts its management service or the session is
// logged out.
//
// # Transport
//
// Transport.Send issues exactly one request and folds every outcome into a
// Result: HTTP 200 is success, any other status is a failure carrying that
// status, and network-level failures carry StatusCode 0 and a classified
// DeviceError. Each request is bounded by a 5 second timeout and followed by
// a 1 second settle delay, since the camera applies changes asynchronously.
//
// # Session
//
//	transport := camera.NewTransport("172.31.0.241")
//	session := camera.NewSession(transport, store, "admin", "secret")
//
//	if res := session.Login(ctx); !res.Succeeded {
//	    return res.Failure()
//	}
//	tmpl, _ := store.Get(templates.AdminUser)
//	res := session.Do(ctx, tmpl)
//
// # Error Handling
//
// Failures are reported as values, never panics. DeviceError classifies them
// (timeout, connection refused, DNS, unreachable, HTTP status) and
// TroubleshootingHint turns them into operator advice.
package camera
