package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONHandler_NestsGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, false, nil)).With("game", "g1").WithGroup("tick")
	logger.Info("advanced", slog.Int("turn", 3), slog.Group("head", slog.Int("x", 5), slog.Int("z", 4)))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if got["msg"] != "advanced" || got["level"] != "INFO" {
		t.Fatalf("msg=%v level=%v", got["msg"], got["level"])
	}
	tick, ok := got["tick"].(map[string]any)
	if !ok {
		t.Fatalf("tick group missing: %v", got)
	}
	if tick["turn"] != float64(3) || got["game"] != "g1" {
		t.Fatalf("game=%v tick=%v", got["game"], tick)
	}
	if _, nested := tick["game"]; nested {
		t.Fatalf("attr added before the group ended up inside it: %v", tick)
	}
	head, ok := tick["head"].(map[string]any)
	if !ok || head["x"] != float64(5) || head["z"] != float64(4) {
		t.Fatalf("head=%v", tick["head"])
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("compact output spans several lines: %q", buf.String())
	}
}

func TestJSONHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, true, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "\n  \"msg\": \"shown\"") {
		t.Fatalf("indented output missing: %q", buf.String())
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range []string{"", "text", "json", "pretty"} {
		if _, err := New(&buf, format, "debug"); err != nil {
			t.Errorf("format %q: %v", format, err)
		}
	}
	if _, err := New(&buf, "xml", "info"); err == nil {
		t.Fatalf("unknown format accepted")
	}
	if _, err := New(&buf, "json", "loud"); err == nil {
		t.Fatalf("unknown level accepted")
	}
	if lvl, err := ParseLevel("warn"); err != nil || lvl != slog.LevelWarn {
		t.Fatalf("ParseLevel(warn)=%v,%v", lvl, err)
	}
}

func TestJSONHandler_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, false, nil))
	wrapped := fmt.Errorf("write tick 3: %w", errors.New("disk full"))
	logger.Error("record tick", slog.Any("error", wrapped))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if got["error"] != "write tick 3: disk full" {
		t.Fatalf("error=%v, want the error text", got["error"])
	}
}
