package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

// These tests mutate package state and must not run in parallel.

func TestInit(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{"defaults", logging.Config{Level: "info", Path: filepath.Join(dir, "a.log")}, false},
		{"warning alias", logging.Config{Level: "warning", Path: filepath.Join(dir, "b.log")}, false},
		{"component override", logging.Config{
			Level:      "info",
			Path:       filepath.Join(dir, "c.log"),
			Components: map[string]string{"archive": "debug", "tailer": "warn"},
		}, false},
		{"invalid level", logging.Config{Level: "loud", Path: filepath.Join(dir, "d.log")}, true},
		{"invalid component level", logging.Config{
			Level:      "info",
			Path:       filepath.Join(dir, "e.log"),
			Components: map[string]string{"archive": "chatty"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if err := logging.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestLevelsAndComponentOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.log")
	if err := logging.Init(logging.Config{
		Level:      "warn",
		Path:       path,
		Components: map[string]string{"verbose": "debug"},
	}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("quiet").Info("quiet info hidden")
	logging.Get("quiet").Warn("quiet warn shown")
	logging.Get("verbose").Debug("verbose debug shown")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, "quiet info hidden") {
		t.Error("info entry written below warn level")
	}
	for _, want := range []string{"quiet warn shown", "verbose debug shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q", want)
		}
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	_ = logging.Close()
	l := logging.Get("early")
	if l == nil {
		t.Fatal("Get() returned nil")
	}
	l.Error("discarded")
}

func TestSubscribe(t *testing.T) {
	if err := logging.Init(logging.Config{Level: "info", Path: filepath.Join(t.TempDir(), "sub.log")}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	ch := logging.Subscribe()
	logging.Get("sub").Warn("watch this")

	select {
	case e := <-ch:
		if e.Component != "sub" || e.Level != logging.LevelWarn || e.Message != "watch this" {
			t.Errorf("unexpected entry %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no entry delivered")
	}
	logging.Unsubscribe(ch)
}

func TestRecent(t *testing.T) {
	if err := logging.Init(logging.Config{
		Level:  "debug",
		Path:   filepath.Join(t.TempDir(), "recent.log"),
		Retain: 3,
	}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	l := logging.Get("archive")
	l.Info("one")
	l.Warn("two")
	l.Warn("three")
	l.Error("four")

	all := logging.Recent(0, logging.LevelDebug)
	if len(all) != 3 || all[0].Message != "two" || all[2].Message != "four" {
		t.Fatalf("Recent(all) = %+v", all)
	}
	last := logging.Recent(1, logging.LevelWarn)
	if len(last) != 1 || last[0].Message != "four" {
		t.Fatalf("Recent(1, warn) = %+v", last)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]logging.Level{
		"DEBUG": logging.LevelDebug,
		"":      logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"Error": logging.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := logging.ParseLevel("nope"); err == nil {
		t.Error("ParseLevel(nope) succeeded")
	}
}
