package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brensch/snek3d/logging"
	"github.com/brensch/snek3d/rules"
	"github.com/brensch/snek3d/store"
)

func TestRunHeadless_Records(t *testing.T) {
	dir := t.TempDir()
	cfg := config{
		settings:  rules.DefaultSettings,
		seed:      42,
		headless:  true,
		ticks:     50,
		recordDir: dir,
	}
	if err := run(context.Background(), cfg, logging.Discard()); err != nil {
		t.Fatalf("run: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil || len(files) != 1 {
		t.Fatalf("recordings=%v err=%v", files, err)
	}
	rows, err := store.ReadGame(files[0])
	if err != nil {
		t.Fatalf("ReadGame: %v", err)
	}
	if len(rows) != 50 {
		t.Fatalf("rows=%d want 50", len(rows))
	}
	if rows[0].Source != "greedy" {
		t.Fatalf("source=%q", rows[0].Source)
	}

	idx, err := store.OpenIndex(dir)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()
	entries := idx.Entries()
	if len(entries) != 1 || entries[0].Path != files[0] || entries[0].Rows != 50 || entries[0].GameID != rows[0].GameID {
		t.Fatalf("index=%+v", entries)
	}
}

func TestBuildPolicy(t *testing.T) {
	if p, _, err := buildPolicy(config{}, logging.Discard()); err != nil || p != nil {
		t.Fatalf("keyboard policy=%v,%v", p, err)
	}
	if _, _, err := buildPolicy(config{pilot: "greedy"}, logging.Discard()); err != nil {
		t.Fatalf("greedy: %v", err)
	}
	if _, _, err := buildPolicy(config{pilot: "magic"}, logging.Discard()); err == nil {
		t.Fatalf("unknown autopilot accepted")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SNEK_TEST_INT", "12")
	t.Setenv("SNEK_TEST_BAD", "twelve")
	t.Setenv("SNEK_TEST_BOOL", "yes")
	if got := getEnvIntOrDefault("SNEK_TEST_INT", 3); got != 12 {
		t.Fatalf("int=%d", got)
	}
	if got := getEnvIntOrDefault("SNEK_TEST_BAD", 3); got != 3 {
		t.Fatalf("bad int=%d", got)
	}
	if !getEnvBoolOrDefault("SNEK_TEST_BOOL", false) {
		t.Fatalf("bool not parsed")
	}
	os.Unsetenv("SNEK_TEST_MISSING")
	if got := getEnvOrDefault("SNEK_TEST_MISSING", "x"); got != "x" {
		t.Fatalf("default=%q", got)
	}
	if newRNG(-1) != nil || newRNG(5) == nil {
		t.Fatalf("newRNG seeds")
	}
}

func TestResolveInterval(t *testing.T) {
	cases := []struct {
		headless, explicit bool
		in, want           time.Duration
	}{
		{false, false, 150 * time.Millisecond, 150 * time.Millisecond},
		{true, false, 150 * time.Millisecond, 0},
		{true, true, 20 * time.Millisecond, 20 * time.Millisecond},
		{false, true, 0, 0},
	}
	for _, tc := range cases {
		if got := resolveInterval(tc.headless, tc.explicit, tc.in); got != tc.want {
			t.Errorf("resolveInterval(%v,%v,%v)=%v want %v", tc.headless, tc.explicit, tc.in, got, tc.want)
		}
	}
}
