package camera

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/camprov/internal/logging"
	"github.com/muurk/camprov/internal/version"
)

const (
	// ControlPath is the camera's JSON control endpoint. The name is
	// historical; it is plain HTTP, not an MQTT broker.
	ControlPath = "/mqtt"

	// DefaultRequestTimeout bounds a single control request
	DefaultRequestTimeout = 5 * time.Second

	// DefaultSettleDelay is the pause after every request while the camera
	// applies what it was sent
	DefaultSettleDelay = 1 * time.Second
)

// Result is the uniform outcome of one request attempt.
type Result struct {
	// Succeeded is true only for HTTP 200
	Succeeded bool

	// Payload is the response body, or a failure description when no
	// response was received
	Payload string

	// StatusCode is the HTTP status, 0 when no response was received
	StatusCode int

	// SessionCookie is the name=value part of the first Set-Cookie header
	SessionCookie string

	// Err describes the failure; nil when Succeeded
	Err *DeviceError
}

// Failure returns the result's error as an error interface, nil on success
func (r Result) Failure() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Transport issues single POST requests to one camera's control endpoint.
type Transport struct {
	// Address is the camera host or host:port (e.g., "172.31.0.241")
	Address string

	// URL is the full control endpoint URL
	URL string

	// HTTPClient is the underlying HTTP client; its Timeout is the request timeout
	HTTPClient *http.Client

	// SettleDelay is waited after every request, successful or not
	SettleDelay time.Duration
}

// NewTransport creates a transport for the camera at address
func NewTransport(address string) *Transport {
	return NewTransportWithURL(address, fmt.Sprintf("http://%s%s", address, ControlPath))
}

// NewTransportWithURL creates a transport posting to an explicit URL
func NewTransportWithURL(address, url string) *Transport {
	return &Transport{
		Address:     address,
		URL:         url,
		HTTPClient:  &http.Client{Timeout: DefaultRequestTimeout},
		SettleDelay: DefaultSettleDelay,
	}
}

// SetTimeout sets the per-request timeout
func (t *Transport) SetTimeout(timeout time.Duration) {
	t.HTTPClient.Timeout = timeout
}

// Send posts body to the control endpoint, attaching token as the Cookie
// header when non-empty. It always waits SettleDelay before returning.
func (t *Transport) Send(ctx context.Context, operation string, body []byte, contentType, token string) Result {
	logging.LogRequest(t.Address, operation, body, token != "")

	result := t.do(ctx, body, contentType, token)
	t.settle(ctx)

	if result.Err != nil && result.StatusCode == 0 {
		logging.Debug("Camera request failed",
			zap.String("address", t.Address),
			zap.String("operation", operation),
			zap.Error(result.Err),
		)
	} else {
		logging.LogResponse(t.Address, operation, result.StatusCode, []byte(result.Payload))
	}

	return result
}

func (t *Transport) do(ctx context.Context, body []byte, contentType, token string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return failed(NewRequestError(t.Address, "failed to create request", err))
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", version.UserAgent())
	if token != "" {
		req.Header.Set("Cookie", token)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return failed(NewRequestError(t.Address, "request cancelled", ctx.Err()))
		}
		return failed(ClassifyNetworkError(err, t.Address))
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		devErr := ClassifyNetworkError(err, t.Address)
		devErr.StatusCode = resp.StatusCode
		return Result{
			Payload:    devErr.Error(),
			StatusCode: resp.StatusCode,
			Err:        devErr,
		}
	}

	result := Result{
		Succeeded:     resp.StatusCode == http.StatusOK,
		Payload:       string(payload),
		StatusCode:    resp.StatusCode,
		SessionCookie: sessionCookie(resp.Header),
	}
	if !result.Succeeded {
		result.Err = NewHTTPError(t.Address, resp.StatusCode)
	}
	return result
}

func (t *Transport) settle(ctx context.Context) {
	if t.SettleDelay <= 0 {
		return
	}

	timer := time.NewTimer(t.SettleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func failed(devErr *DeviceError) Result {
	return Result{
		Payload: devErr.Error(),
		Err:     devErr,
	}
}

// sessionCookie extracts "name=value" from the first Set-Cookie header,
// dropping attributes such as Path and HttpOnly.
func sessionCookie(header http.Header) string {
	values := header.Values("Set-Cookie")
	if len(values) == 0 {
		return ""
	}
	cookie, _, _ := strings.Cut(values[0], ";")
	return strings.TrimSpace(cookie)
}
