package camera

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestTransport(url string) *Transport {
	tr := NewTransportWithURL("cam.test", url)
	tr.SettleDelay = 0
	return tr
}

func TestNewTransport(t *testing.T) {
	tr := NewTransport("172.31.0.241")

	if tr.URL != "http://172.31.0.241/mqtt" {
		t.Errorf("URL = %s, want http://172.31.0.241/mqtt", tr.URL)
	}
	if tr.HTTPClient.Timeout != DefaultRequestTimeout {
		t.Errorf("Timeout = %v, want %v", tr.HTTPClient.Timeout, DefaultRequestTimeout)
	}
	if tr.SettleDelay != DefaultSettleDelay {
		t.Errorf("SettleDelay = %v, want %v", tr.SettleDelay, DefaultSettleDelay)
	}

	tr.SetTimeout(2 * time.Second)
	if tr.HTTPClient.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", tr.HTTPClient.Timeout)
	}
}

func TestSend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Request method = %s, want POST", r.Method)
		}
		if r.URL.Path != ControlPath {
			t.Errorf("Path = %s, want %s", r.URL.Path, ControlPath)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "camprov/") {
			t.Errorf("User-Agent = %q", ua)
		}
		if c := r.Header.Get("Cookie"); c != "sid=abc" {
			t.Errorf("Cookie = %q, want sid=abc", c)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"method":"x"}` {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	tr := newTestTransport(server.URL + ControlPath)
	res := tr.Send(context.Background(), "cameraId", []byte(`{"method":"x"}`), "application/json", "sid=abc")

	if !res.Succeeded {
		t.Fatalf("Succeeded = false, err = %v", res.Err)
	}
	if res.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
	if res.Payload != `{"result":true}` {
		t.Errorf("Payload = %s", res.Payload)
	}
	if res.Failure() != nil {
		t.Errorf("Failure() = %v, want nil", res.Failure())
	}
}

func TestSend_NoTokenNoCookieHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Cookie"]; ok {
			t.Error("Cookie header should be absent without a token")
		}
	}))
	defer server.Close()

	res := newTestTransport(server.URL).Send(context.Background(), "auth", []byte(`{}`), "application/json", "")
	if !res.Succeeded {
		t.Errorf("Succeeded = false, err = %v", res.Err)
	}
}

func TestSend_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("busy"))
	}))
	defer server.Close()

	res := newTestTransport(server.URL).Send(context.Background(), "ntp", []byte(`{}`), "application/json", "")

	if res.Succeeded {
		t.Fatal("Succeeded = true for HTTP 500")
	}
	if res.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", res.StatusCode)
	}
	if res.Payload != "busy" {
		t.Errorf("Payload = %q, want busy", res.Payload)
	}
	if res.Err == nil || res.Err.Type != ErrTypeHTTP {
		t.Errorf("Err = %v, want HTTP error", res.Err)
	}
}

func TestSend_NoContentIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	res := newTestTransport(server.URL).Send(context.Background(), "ntp", []byte(`{}`), "application/json", "")
	if res.Succeeded || res.StatusCode != 204 {
		t.Errorf("got Succeeded=%v StatusCode=%d, want false/204", res.Succeeded, res.StatusCode)
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := newTestTransport(url).Send(context.Background(), "auth", []byte(`{}`), "application/json", "")

	if res.Succeeded {
		t.Fatal("Succeeded = true for closed server")
	}
	if res.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 (absent)", res.StatusCode)
	}
	if res.Payload == "" {
		t.Error("Payload should describe the failure")
	}
	if !IsNetworkError(res.Failure()) {
		t.Errorf("Err = %v, want network error", res.Err)
	}
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	tr := newTestTransport(server.URL)
	tr.SetTimeout(50 * time.Millisecond)

	res := tr.Send(context.Background(), "auth", []byte(`{}`), "application/json", "")

	if res.Succeeded || res.StatusCode != 0 {
		t.Fatalf("got Succeeded=%v StatusCode=%d, want false/0", res.Succeeded, res.StatusCode)
	}
	if res.Err.Type != ErrTypeTimeout {
		t.Errorf("Err.Type = %v, want Timeout", res.Err.Type)
	}
}

func TestSend_SettleDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	tr := newTestTransport(server.URL)
	tr.SettleDelay = 80 * time.Millisecond

	start := time.Now()
	tr.Send(context.Background(), "check", []byte(`{}`), "application/json", "")
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("Send returned after %v, want at least the settle delay", elapsed)
	}
}

func TestSend_SettleDelayAfterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr := newTestTransport(url)
	tr.SettleDelay = 80 * time.Millisecond

	start := time.Now()
	tr.Send(context.Background(), "check", []byte(`{}`), "application/json", "")
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("failed Send returned after %v, want at least the settle delay", elapsed)
	}
}

func TestSend_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := newTestTransport(server.URL)
	tr.SettleDelay = time.Hour

	res := tr.Send(ctx, "auth", []byte(`{}`), "application/json", "")
	if res.Succeeded {
		t.Fatal("Succeeded = true for cancelled context")
	}
	if res.Err.Type != ErrTypeRequest {
		t.Errorf("Err.Type = %v, want Request", res.Err.Type)
	}
}

func TestSessionCookie(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"none", nil, ""},
		{"bare", []string{"sid1"}, "sid1"},
		{"attributes", []string{"SessionID=abc123; Path=/; HttpOnly"}, "SessionID=abc123"},
		{"first wins", []string{"a=1; Path=/", "b=2"}, "a=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for _, v := range tt.values {
				h.Add("Set-Cookie", v)
			}
			if got := sessionCookie(h); got != tt.want {
				t.Errorf("sessionCookie() = %q, want %q", got, tt.want)
			}
		})
	}
}
