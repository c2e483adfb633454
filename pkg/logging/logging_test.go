package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)
	fn()
	return buf.String()
}

func TestInfo(t *testing.T) {
	out := capture(t, func() { Info("test", "hello %s", "world") })
	if !strings.Contains(out, "[test] hello world") {
		t.Errorf("Expected subsystem-prefixed message, got %q", out)
	}
}

func TestDebug_RespectsEnvAtCallTime(t *testing.T) {
	t.Setenv("DEBUG", "")
	out := capture(t, func() { Debug("test", "hidden") })
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug suppressed without DEBUG=true, got %q", out)
	}

	// DEBUG can be enabled after init, e.g. by a .env load at startup.
	t.Setenv("DEBUG", "true")
	out = capture(t, func() { Debug("test", "visible") })
	if !strings.Contains(out, "[test] visible") {
		t.Errorf("Expected debug output with DEBUG=true, got %q", out)
	}
}
