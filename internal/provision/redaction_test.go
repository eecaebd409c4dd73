package provision

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/camprov/internal/codec"
	"github.com/muurk/camprov/internal/logging"
)

func TestRun_DebugLogsCarryNoSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	sim := newSimulator(t)
	runner := sim.start(defaultTarget(), nil, nil)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sim.loginCount() != 4 {
		t.Fatalf("loginCount = %d, want 4", sim.loginCount())
	}

	secrets := []string{
		codec.Encode("admin:s3cret"),
		"s3cret",
		"ChangeMe-Admin1",
		"ChangeMe-Rtsp1",
	}

	entries := logs.All()
	if len(entries) == 0 {
		t.Fatal("expected debug entries from a full run")
	}

	var requests int
	for _, entry := range entries {
		if entry.Message == "Camera request" {
			requests++
		}
		for key, value := range entry.ContextMap() {
			logged := fmt.Sprint(value)
			for _, secret := range secrets {
				if strings.Contains(logged, secret) {
					t.Errorf("%q field %q leaks %q: %s", entry.Message, key, secret, logged)
				}
			}
		}
		for _, secret := range secrets {
			if strings.Contains(entry.Message, secret) {
				t.Errorf("message leaks %q: %s", secret, entry.Message)
			}
		}
	}
	if requests < 10 {
		t.Errorf("logged %d camera requests, want every request logged", requests)
	}
}
