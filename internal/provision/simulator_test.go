package provision

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/muurk/camprov/internal/camera"
	"github.com/muurk/camprov/internal/templates"
)

const opLogin = "login"

// observedRequest is one request observed by the simulator
type observedRequest struct {
	op     string
	cookie string
	body   []byte
}

// simulator is a fake camera. It classifies each request by RPC method and
// answers according to its configuration.
type simulator struct {
	t *testing.T

	mu       sync.Mutex
	requests []observedRequest
	logins   int

	// loginStatus returns the status for the n-th login (0-based); nil = 200
	loginStatus func(n int) int
	// cookies[n] is set on the n-th successful login; the last entry repeats
	cookies []string
	// stepStatus overrides the status per operation; missing = 200
	stepStatus map[string]int
}

func newSimulator(t *testing.T) *simulator {
	return &simulator{
		t:          t,
		cookies:    []string{"sid1"},
		stepStatus: map[string]int{},
	}
}

func classify(body []byte) string {
	method := gjson.GetBytes(body, "method").String()
	data := gjson.GetBytes(body, "data").String()

	switch method {
	case "global.login":
		return opLogin
	case "global.logout":
		return StepLogout
	case "userManager.modifyUser":
		return StepSetAdminUser
	case "userManager.deleteUser":
		return StepDeleteRtspUser
	case "userManager.addUser":
		return StepSetRtspUser
	case "configManager.setConfig":
		switch gjson.Get(data, "name").String() {
		case "General":
			return StepSetDeviceID
		case "NTP":
			return StepSetTimeServer
		}
	}
	return "unknown:" + method
}

func (s *simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	op := classify(body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, observedRequest{op: op, cookie: r.Header.Get("Cookie"), body: body})

	if op == opLogin {
		n := s.logins
		s.logins++

		status := http.StatusOK
		if s.loginStatus != nil {
			status = s.loginStatus(n)
		}
		if status == http.StatusOK {
			cookie := s.cookies[len(s.cookies)-1]
			if n < len(s.cookies) {
				cookie = s.cookies[n]
			}
			w.Header().Set("Set-Cookie", cookie+"; Path=/; HttpOnly")
		}
		w.WriteHeader(status)
		return
	}

	status := http.StatusOK
	if code, ok := s.stepStatus[op]; ok {
		status = code
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"result":true}`))
}

func (s *simulator) recorded() []observedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]observedRequest(nil), s.requests...)
}

func (s *simulator) ops() []string {
	var ops []string
	for _, r := range s.recorded() {
		ops = append(ops, r.op)
	}
	return ops
}

func (s *simulator) stepOps() []string {
	var ops []string
	for _, op := range s.ops() {
		if op != opLogin {
			ops = append(ops, op)
		}
	}
	return ops
}

func (s *simulator) loginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// start serves the simulator and returns a runner wired to it with no
// settle delay.
func (s *simulator) start(target Target, store *templates.Store, observer Observer) *Runner {
	s.t.Helper()

	server := httptest.NewServer(s)
	s.t.Cleanup(server.Close)

	if store == nil {
		var err error
		store, err = templates.Default()
		if err != nil {
			s.t.Fatalf("templates.Default() error = %v", err)
		}
	}

	transport := camera.NewTransportWithURL(target.Address, server.URL+camera.ControlPath)
	transport.SettleDelay = 0

	session := camera.NewSession(transport, store, "admin", "s3cret")
	return NewRunner(NewRunContext(target, session), store, observer)
}

func defaultTarget() Target {
	return Target{Address: "172.31.0.241", DeviceID: "31321312", TimeServer: "10.0.0.1"}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
