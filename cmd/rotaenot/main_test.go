package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/rotaenot/internal/chart"
	"github.com/verte-zerg/rotaenot/internal/config"
	"github.com/verte-zerg/rotaenot/internal/judgment"
	"github.com/verte-zerg/rotaenot/internal/store"
)

func setupXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}

	var uncommented []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		uncommented = append(uncommented, line)
	}
	md, err := toml.Decode(strings.Join(uncommented, "\n"), &cfg)
	if err != nil {
		t.Fatalf("uncommented template does not parse: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Fatalf("template has unknown key %q", undecoded[0].String())
	}
	if cfg.Rotation.SmoothingFactor == nil || *cfg.Rotation.SmoothingFactor != 0.15 {
		t.Fatalf("unexpected smoothing factor in template")
	}
	if cfg.Judgment.Good == nil || *cfg.Judgment.Good != 120 {
		t.Fatalf("unexpected good window in template")
	}
	if cfg.Play.Difficulty == nil || *cfg.Play.Difficulty != defaultDifficulty {
		t.Fatalf("unexpected difficulty in template")
	}
}

func TestJudgeOffsets(t *testing.T) {
	lines, err := judgeOffsets(judgment.DefaultWindow(), []string{"0", "-60", "100", "121", "NaN"})
	if err != nil {
		t.Fatalf("judge offsets: %v", err)
	}
	want := []string{"0\tPerfect", "-60\tGreat", "100\tGood", "121\tMiss", "NaN\tMiss"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	if _, err := judgeOffsets(judgment.DefaultWindow(), []string{"soon"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPlayCommandWritesRecord(t *testing.T) {
	setupXDG(t)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--seed", "7", "--duration", "4", "--difficulty", "3", "--trace-width", "20", "--jitter-ms", "0"})
	if err := root.Execute(); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Session ", "generated-3 (difficulty 3)", "Angle trace "} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	recs, err := st.ListRecords(context.Background(), store.RecordFilter{})
	if cerr := st.Close(); cerr != nil {
		t.Fatalf("close db: %v", cerr)
	}
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(recs) != 1 || recs[0].SongID != "generated-3" || recs[0].Difficulty != 3 {
		t.Fatalf("unexpected records: %+v", recs)
	}

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"b40"})
	if err := root.Execute(); err != nil {
		t.Fatalf("b40: %v", err)
	}
	if !strings.Contains(out.String(), "B40 rating:") || !strings.Contains(out.String(), "generated-3") {
		t.Fatalf("unexpected b40 output:\n%s", out.String())
	}

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"b40", "--song", "other"})
	if err := root.Execute(); err != nil {
		t.Fatalf("b40 --song: %v", err)
	}
	if !strings.Contains(out.String(), "No score records") {
		t.Fatalf("expected song filter to exclude records:\n%s", out.String())
	}
}

func TestB40FromExportedFile(t *testing.T) {
	dir := setupXDG(t)
	path := filepath.Join(dir, "records.json")
	data := `[{"song_id": "x", "difficulty": 10, "rating": 11.5, "timestamp": "2026-01-02T00:00:00Z"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write records: %v", err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"b40", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("b40: %v", err)
	}
	if !strings.Contains(out.String(), "B40 rating: 11.50 (1 songs)") {
		t.Fatalf("unexpected b40 output:\n%s", out.String())
	}
}

func TestConfigShowUsesFileKeys(t *testing.T) {
	setupXDG(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[rotation]\nsmoothing-factor = 0.3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "smoothing-factor = 0.3") || strings.Contains(text, "SmoothingFactor") {
		t.Fatalf("expected TOML keys in output:\n%s", text)
	}
}

func TestPlayCommandRejectsBadInput(t *testing.T) {
	setupXDG(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--input", "joystick", "--no-record"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected unknown input to fail")
	}
}

func TestChartGenerateAndValidate(t *testing.T) {
	dir := setupXDG(t)
	path := filepath.Join(dir, "song.json")

	root := newRootCmd()
	root.SetArgs([]string{"chart", "generate", "--out", path, "--difficulty", "8", "--duration", "5"})
	if err := root.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	c, err := chart.Load(path)
	if err != nil {
		t.Fatalf("load generated chart: %v", err)
	}
	if c.Difficulty != 8 || len(c.Notes) == 0 {
		t.Fatalf("unexpected chart: difficulty %d, %d notes", c.Difficulty, len(c.Notes))
	}

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"chart", "validate", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), ": ok (") {
		t.Fatalf("unexpected validate output %q", out.String())
	}
}
