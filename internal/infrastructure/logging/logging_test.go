package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestInitWritesConsoleAndFile(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "mintbench.log")
	writer, err := Init(Config{Level: "info", File: path, Console: &console})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer writer.Close()

	slog.Info("variant deployed", "variant", "Standard721")
	slog.Debug("hidden")

	if !strings.Contains(console.String(), "variant=Standard721") {
		t.Errorf("console output = %q", console.String())
	}
	if strings.Contains(console.String(), "hidden") {
		t.Error("debug record written at info level")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "variant deployed") {
		t.Errorf("log file = %q", data)
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writer, err := NewRotatingWriter(path, 1, 2)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer writer.Close()

	chunk := bytes.Repeat([]byte("x"), 600*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	for _, name := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(fmt.Sprintf("%s.3", path)); err == nil {
		t.Error("expected at most 2 backups")
	}
}
