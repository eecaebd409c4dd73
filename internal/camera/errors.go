package camera

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of a failed camera request
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error not covered below
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request exceeded its deadline
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening on the camera's HTTP port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the camera hostname could not be resolved
	ErrTypeDNS
	// ErrTypeUnreachable indicates no route to the camera
	ErrTypeUnreachable
	// ErrTypeHTTP indicates the camera answered with a non-200 status
	ErrTypeHTTP
	// ErrTypeSession indicates a login that returned no usable session cookie
	ErrTypeSession
	// ErrTypeRequest indicates the request could not be built or the run was cancelled
	ErrTypeRequest
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeUnreachable:
		return "Host Unreachable"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeSession:
		return "Session Error"
	case ErrTypeRequest:
		return "Request Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError describes why a single camera request did not succeed.
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if one was received)
	Address    string    // Camera address (for context)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport failure onto a DeviceError.
func ClassifyNetworkError(err error, address string) *DeviceError {
	if err == nil {
		return nil
	}

	devErr := &DeviceError{
		Type:    ErrTypeNetwork,
		Message: "network error occurred",
		Address: address,
		Err:     err,
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError

	switch {
	case os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded):
		devErr.Type = ErrTypeTimeout
		devErr.Message = "request timed out"

	case errors.As(err, &dnsErr):
		devErr.Type = ErrTypeDNS
		devErr.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)

	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED):
		devErr.Type = ErrTypeConnectionRefused
		devErr.Message = "camera refused connection"

	case errors.As(err, &opErr) && (errors.Is(opErr.Err, syscall.EHOSTUNREACH) || errors.Is(opErr.Err, syscall.ENETUNREACH)):
		devErr.Type = ErrTypeUnreachable
		devErr.Message = "camera unreachable"
	}

	return devErr
}

// NewHTTPError creates an error for a non-200 response
func NewHTTPError(address string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		Address:    address,
	}
}

// NewSessionError creates an error for a login that returned no cookie
func NewSessionError(address, message string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeSession,
		Message:    message,
		StatusCode: 200,
		Address:    address,
	}
}

// NewRequestError creates an error for requests that never reached the camera
func NewRequestError(address, message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeRequest,
		Message: message,
		Address: address,
		Err:     err,
	}
}

// IsNetworkError reports whether err is a transport-level failure (no status received)
func IsNetworkError(err error) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	switch devErr.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS, ErrTypeUnreachable:
		return true
	}
	return false
}

// IsRetryable reports whether repeating the request could plausibly succeed.
// A rebooting camera refuses or drops connections for a while, so those count.
func IsRetryable(err error) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	switch devErr.Type {
	case ErrTypeDNS, ErrTypeRequest:
		return false
	case ErrTypeHTTP:
		return devErr.StatusCode >= 500
	}
	return true
}

// ShortMessage returns a concise, operator-friendly description of err
func ShortMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "camera not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "camera refused connection - still rebooting?"
	case ErrTypeDNS:
		return "cannot resolve camera hostname"
	case ErrTypeUnreachable:
		return "camera unreachable - check network connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("camera error (HTTP %d)", devErr.StatusCode)
	default:
		return devErr.Message
	}
}

// TroubleshootingHint returns operator advice for err
func TroubleshootingHint(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The camera did not respond in time.",
			"Troubleshooting:",
			"  • Check that the camera is powered on and linked",
			"  • The camera may still be restarting its management service",
			"  • Try increasing --timeout",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The camera refused the connection.",
			"Troubleshooting:",
			"  • The web service restarts after NTP and user changes; wait and retry",
			"  • Verify the camera's HTTP port is 80",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the camera hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Run 'camprov scan' to list cameras on the local network",
		}, "\n")

	case ErrTypeUnreachable:
		return strings.Join([]string{
			"The camera is not reachable on the network.",
			"Troubleshooting:",
			"  • Verify the camera IP address is correct",
			"  • Check that you're on the same VLAN as the camera",
			"  • Try pinging the camera: ping " + devErr.Address,
		}, "\n")

	case ErrTypeHTTP:
		if devErr.StatusCode == 401 || devErr.StatusCode == 403 {
			return "The camera rejected the credentials. Check LGN and PSWD."
		}
		if devErr.StatusCode >= 500 {
			return fmt.Sprintf("The camera returned HTTP %d. It may be busy applying a previous change.", devErr.StatusCode)
		}
		return fmt.Sprintf("The camera returned HTTP %d. Check the request templates for this firmware.", devErr.StatusCode)

	case ErrTypeSession:
		return "Login succeeded but the camera set no session cookie. Check the auth template."

	default:
		return "Network communication failed. Check your connection to the camera."
	}
}
