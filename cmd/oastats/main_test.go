package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oastats/oastats-go/internal/config"
	"github.com/oastats/oastats-go/internal/store"
)

const gameLog = `  0:00 InitGame: \sv_hostname\Frag Zone\g_gametype\0\mapname\q3dm17
  0:01 ClientUserinfoChanged: 0 n\Alice\t\0\model\sarge\hc\100
  0:02 ClientUserinfoChanged: 1 n\Bob\t\0\model\grunt\hc\80
  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET
  2:00 Kill: 1 0 10: Bob killed Alice by MOD_RAILGUN
  3:30 say: Bob: not again
 10:00 Exit: Timelimit hit.
 10:00 score: 1  ping: 50  client: 0 Alice
 10:00 score: 1  ping: 70  client: 1 Bob
 10:05 ShutdownGame:
`

// execute runs the CLI with a config path that does not exist, so only
// defaults apply.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeGameLog(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "games.log")
	if err := os.WriteFile(path, []byte(gameLog), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func serverLine(t *testing.T, out string) serverReport {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var rec jsonLine
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec.Kind != "server" || rec.Server == nil {
		t.Fatalf("last record is %q, want server", rec.Kind)
	}
	return *rec.Server
}

func TestProcessCommand(t *testing.T) {
	dir, path := writeGameLog(t)

	out, err := execute(t, dir, "process", "--format", "jsonl", path)
	if err != nil {
		t.Fatalf("process error = %v", err)
	}
	if s := serverLine(t, out); s.NewGames != 1 || s.Frags != 2 {
		t.Errorf("first run server = %+v", s)
	}
	if _, err := os.Stat(path + store.CacheSuffix); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}

	out, err = execute(t, dir, "process", "--format", "jsonl", path)
	if err != nil {
		t.Fatalf("second process error = %v", err)
	}
	s := serverLine(t, out)
	if s.NewGames != 0 || !s.Resumed || s.Frags != 2 {
		t.Errorf("second run server = %+v", s)
	}
}

func TestProcessCommand_NoCache(t *testing.T) {
	dir, path := writeGameLog(t)

	if _, err := execute(t, dir, "process", "--no-cache", path); err != nil {
		t.Fatalf("process error = %v", err)
	}
	if _, err := os.Stat(path + store.CacheSuffix); !os.IsNotExist(err) {
		t.Errorf("snapshot written with --no-cache (stat err = %v)", err)
	}
}

func TestProcessCommand_SQLite(t *testing.T) {
	dir, path := writeGameLog(t)
	db := filepath.Join(dir, "snapshots.db")

	for i, want := range []int{1, 0} {
		out, err := execute(t, dir, "process", "--store", "sqlite", "--store-path", db, "--format", "jsonl", path)
		if err != nil {
			t.Fatalf("run %d error = %v", i+1, err)
		}
		if s := serverLine(t, out); s.NewGames != want {
			t.Errorf("run %d new games = %d, want %d", i+1, s.NewGames, want)
		}
	}
}

func TestProcessCommand_InvalidFlags(t *testing.T) {
	dir, path := writeGameLog(t)

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"process", "--format", "html", path}},
		{"min play", []string{"process", "--min-play", "2", path}},
		{"store", []string{"process", "--store", "redis", path}},
		{"missing log", []string{"process", filepath.Join(dir, "nope.log")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, dir, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "oastats", "config.yaml")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out.String(), "created") {
		t.Errorf("unexpected output %q", out.String())
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written config invalid: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "completion", "bash")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out, "oastats") {
		t.Error("bash completion does not mention oastats")
	}
}
