package monitoring

import (
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op that must not reach the previous logger
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestWarnf(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var rec Recorder
	SetLogger(rec.Logf)

	msg := Warnf("output path %s does not exist", "/nope")
	if msg != "output path /nope does not exist" {
		t.Errorf("Warnf returned %q", msg)
	}

	lines := rec.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 recorded line, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "WARNING ") || !strings.HasSuffix(lines[0], msg) {
		t.Errorf("unexpected log line %q", lines[0])
	}
}
