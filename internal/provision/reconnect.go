package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/muurk/camprov/internal/camera"
	"github.com/muurk/camprov/internal/logging"
)

// DefaultMaxAttempts is the number of retries after the first login attempt
const DefaultMaxAttempts = 5

// ErrSessionLost is matched (errors.Is) by every *SessionLostError
var ErrSessionLost = errors.New("session lost")

// SessionLostError is returned when the camera could not be logged into
// within the retry budget. It is the only error that aborts a run.
type SessionLostError struct {
	Address  string
	Attempts int
	Last     camera.Result
}

// Error implements the error interface
func (e *SessionLostError) Error() string {
	return fmt.Sprintf("host %s unavailable: no session after %d login attempts", e.Address, e.Attempts)
}

// Unwrap exposes ErrSessionLost and the last attempt's failure
func (e *SessionLostError) Unwrap() []error {
	errs := []error{ErrSessionLost}
	if failure := e.Last.Failure(); failure != nil {
		errs = append(errs, failure)
	}
	return errs
}

// Reconnector re-establishes a session after the camera drops it.
type Reconnector struct {
	Session *camera.Session

	// MaxAttempts is the number of retries after the first attempt, so up to
	// MaxAttempts+1 logins are made
	MaxAttempts int

	Observer Observer

	total int
}

// NewReconnector creates a reconnector with the default budget
func NewReconnector(session *camera.Session) *Reconnector {
	return &Reconnector{
		Session:     session,
		MaxAttempts: DefaultMaxAttempts,
		Observer:    NopObserver{},
	}
}

// Reconnect logs in until the camera answers 200 with a session cookie.
// Attempts are spaced only by the transport's settle delay.
func (r *Reconnector) Reconnect(ctx context.Context) (camera.Result, error) {
	address := r.Session.Address()
	maxAttempts := r.MaxAttempts
	if maxAttempts < 0 {
		maxAttempts = 0
	}

	var last camera.Result
	attempt := 0

	err := retry.Do(
		func() error {
			logging.LogReconnectAttempt(address, attempt, maxAttempts)
			r.observer().ReconnectAttempt(address, attempt)
			attempt++
			r.total++

			last = r.Session.Login(ctx)
			r.observer().LoginFinished(address, last)

			if last.Succeeded && last.StatusCode == 200 {
				return nil
			}
			if ctx.Err() != nil {
				return retry.Unrecoverable(ctx.Err())
			}
			if failure := last.Failure(); failure != nil {
				return failure
			}
			return fmt.Errorf("login returned status %d", last.StatusCode)
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxAttempts+1)),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logging.Warn("Login attempt failed",
				zap.String("address", address),
				zap.Uint("attempt", n),
				zap.Error(err),
			)
		}),
	)
	if err == nil {
		return last, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return last, fmt.Errorf("reconnect to %s interrupted: %w", address, ctxErr)
	}

	lost := &SessionLostError{Address: address, Attempts: attempt, Last: last}
	logging.Error("Session lost", zap.String("address", address), zap.Int("attempts", attempt))
	r.observer().SessionLost(lost)
	return last, lost
}

// TotalAttempts returns the number of logins made by this reconnector
func (r *Reconnector) TotalAttempts() int {
	return r.total
}

func (r *Reconnector) observer() Observer {
	if r.Observer == nil {
		return NopObserver{}
	}
	return r.Observer
}
