package camera

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/camprov/internal/codec"
	"github.com/muurk/camprov/internal/logging"
	"github.com/muurk/camprov/internal/templates"
)

// credentialsField is the data field of the auth template that carries
// base64(username:password)
const credentialsField = "credentials"

// Session is the authenticated relationship with one camera.
//
// The current token is set only by a successful Login and cleared only by a
// successful Logout. Every authenticated request reads it under the lock, so a
// request issued after Login returns always carries that login's cookie.
type Session struct {
	transport *Transport
	templates *templates.Store

	// Username and Password are sent on every login
	Username string
	Password string

	mu    sync.RWMutex
	token string
}

// NewSession creates an unauthenticated session
func NewSession(transport *Transport, store *templates.Store, username, password string) *Session {
	return &Session{
		transport: transport,
		templates: store,
		Username:  username,
		Password:  password,
	}
}

// Address returns the camera address the session talks to
func (s *Session) Address() string {
	return s.transport.Address
}

// Token returns the current session cookie, empty when not logged in
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Login authenticates with the camera. On success the returned cookie
// replaces the current token; on failure the token is left as it was.
func (s *Session) Login(ctx context.Context) Result {
	tmpl, err := s.templates.Get(templates.Auth)
	if err != nil {
		return failed(NewRequestError(s.Address(), "no auth template", err))
	}

	if err := tmpl.SetDataField(credentialsField, codec.Encode(s.Username+":"+s.Password)); err != nil {
		return failed(NewRequestError(s.Address(), "failed to build login request", err))
	}

	result := s.transport.Send(ctx, tmpl.Name, tmpl.Body, tmpl.ContentType, "")
	if !result.Succeeded {
		logging.Warn("Login failed",
			zap.String("address", s.Address()),
			zap.Int("status_code", result.StatusCode),
		)
		return result
	}

	if result.SessionCookie == "" {
		result.Succeeded = false
		result.Err = NewSessionError(s.Address(), "login response carried no session cookie")
		return result
	}

	s.setToken(result.SessionCookie)
	logging.Debug("Session established", zap.String("address", s.Address()))
	return result
}

// Logout ends the session on the camera. A successful logout clears the
// local token; a failed one keeps it.
func (s *Session) Logout(ctx context.Context) Result {
	tmpl, err := s.templates.Get(templates.Logout)
	if err != nil {
		return failed(NewRequestError(s.Address(), "no logout template", err))
	}

	result := s.Do(ctx, tmpl)
	if result.Succeeded {
		s.setToken("")
	}
	return result
}

// Do sends tmpl with the current session token.
func (s *Session) Do(ctx context.Context, tmpl templates.Template) Result {
	return s.transport.Send(ctx, tmpl.Name, tmpl.Body, tmpl.ContentType, s.Token())
}
