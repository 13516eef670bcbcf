package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record written without verbose: %q", buf.String())
	}

	New(&buf, true).Debug("shown", "repo", "svc-a")
	out := buf.String()
	if !strings.Contains(out, "shown") || !strings.Contains(out, "svc-a") {
		t.Errorf("verbose logger output = %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color escapes for non-terminal writer: %q", out)
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) == nil {
		t.Fatal("OrDefault(nil) returned nil")
	}
	l := Discard()
	if OrDefault(l) != l {
		t.Error("OrDefault should return the given logger")
	}
}
