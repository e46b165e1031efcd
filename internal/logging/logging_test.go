package logging

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	entry := FromContext(context.Background())
	if entry.Logger != L.Logger {
		t.Error("expected the global logger when the context carries none")
	}
}

func TestWithLogger(t *testing.T) {
	custom := logrus.NewEntry(logrus.New()).WithField("component", "test")
	ctx := WithLogger(context.Background(), custom)

	got := G(ctx)
	if got.Data["component"] != "test" {
		t.Errorf("G(ctx).Data[component] = %v, want %q", got.Data["component"], "test")
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(false) })

	Configure(true)
	if L.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s, want debug", L.Logger.GetLevel())
	}

	Configure(false)
	if L.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s, want warning", L.Logger.GetLevel())
	}
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { Configure(false) })

	if err := SetLogLevel("info"); err != nil {
		t.Fatalf("SetLogLevel(info) unexpected error: %v", err)
	}
	if L.Logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %s, want info", L.Logger.GetLevel())
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Error("SetLogLevel(loud) expected error")
	}
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Configure(false)
	})
	Configure(true)

	G(context.Background()).WithField("step", "Preflight").Debug("entering step")

	out := buf.String()
	if !strings.Contains(out, "entering step") || !strings.Contains(out, "step=Preflight") {
		t.Errorf("unexpected log output: %q", out)
	}
}
