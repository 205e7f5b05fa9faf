package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigureWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := ConfigureWriter(LevelWarn, &buf); err != nil {
		t.Fatalf("ConfigureWriter: %v", err)
	}
	defer func() { _ = Configure(LevelInfo) }()

	slog.Info("hidden")
	slog.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record passed a warn-level logger: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	lvl, err := parseLevel("")
	if err != nil {
		t.Fatalf("parseLevel: %v", err)
	}
	if lvl != slog.LevelInfo {
		t.Errorf("got %v, want info", lvl)
	}
}
