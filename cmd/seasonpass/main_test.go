package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
)

type cliEnv struct {
	baseDir    string
	configPath string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("SEASONPASS_STATE_DIR", "")
	t.Setenv("SEASONPASS_STORAGE_BACKEND", "")
	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[storage]
backend = "file"
`, filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{baseDir: base, configPath: configPath}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestStatusShowsFreshProgress(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	for _, want := range []string{"THE QUIET CONSTANT", "open", "needs season 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestUnlockRequiresPrerequisite(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "unlock", "2", "manoj2901")
	if err == nil || !strings.Contains(err.Error(), "complete season 1 first") {
		t.Fatalf("unlock = %v\n%s", err, out)
	}
	if _, err := env.run(t, "unlock", "two", "x"); err == nil {
		t.Fatal("non-numeric season should fail")
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	env := setupCLIEnv(t)
	if _, err := env.run(t, "reset"); err == nil {
		t.Fatal("reset without --yes should fail")
	}
	out, err := env.run(t, "reset", "--yes")
	if err != nil || !strings.Contains(out, "Progress reset") {
		t.Fatalf("reset --yes = %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(env.baseDir, "state", "state.json")); err != nil {
		t.Fatalf("reset should write the state file: %v", err)
	}
}

func TestStateWritersRespectPlayerLock(t *testing.T) {
	env := setupCLIEnv(t)
	stateDir := filepath.Join(env.baseDir, "state")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir state: %v", err)
	}
	held := flock.New(filepath.Join(stateDir, "player.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold player lock: ok=%v err=%v", ok, err)
	}

	for _, args := range [][]string{{"reset", "--yes"}, {"unlock", "2", "manoj2901"}} {
		out, err := env.run(t, args...)
		if err == nil || !strings.Contains(err.Error(), "already running") {
			t.Fatalf("%v with player running = %v\n%s", args, err, out)
		}
	}
	if _, err := os.Stat(filepath.Join(stateDir, "state.json")); !os.IsNotExist(err) {
		t.Fatalf("state must not be written while the player runs: %v", err)
	}
	if out, err := env.run(t, "status"); err != nil {
		t.Fatalf("status should only read: %v\n%s", err, out)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("release player lock: %v", err)
	}
	out, err := env.run(t, "reset", "--yes")
	if err != nil || !strings.Contains(out, "Progress reset") {
		t.Fatalf("reset after release = %v\n%s", err, out)
	}
	out, err = env.run(t, "reset", "--yes")
	if err != nil {
		t.Fatalf("lock should be released after reset: %v\n%s", err, out)
	}
}

func TestCaptionsCommands(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "captions", "show", "1")
	if err != nil || !strings.Contains(out, "Chapter One.") || !strings.Contains(out, "ends 00:43") {
		t.Fatalf("captions show = %v\n%s", err, out)
	}

	target := filepath.Join(env.baseDir, "season1.srt")
	if _, err := env.run(t, "captions", "export", "1", "--out", target); err != nil {
		t.Fatalf("captions export: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\n00:00:00,000 --> 00:00:02,000\nChapter One.\n") {
		t.Fatalf("unexpected srt:\n%s", data)
	}

	if _, err := env.run(t, "captions", "show", "9"); err == nil {
		t.Fatal("unknown season should fail")
	}
}

func TestHashCodeSkipsConfig(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing", "dir", "config.toml"), "hash-code", "secret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("hash-code: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", buf.String())
	}
}

func TestConfigValidateAndDoctor(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "config", "validate")
	if err != nil || !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "4 seasons") {
		t.Fatalf("config validate = %v\n%s", err, out)
	}
	out, err = env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if strings.Contains(out, "[ERROR]") || !strings.Contains(out, "playback:") {
		t.Fatalf("doctor output:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.baseDir, "new", "config.toml")
	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil || !strings.Contains(out, target) {
		t.Fatalf("config init = %v\n%s", err, out)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "42", want: 42, ok: true},
		{in: "1:05", want: 65, ok: true},
		{in: "1:00:01", want: 3601, ok: true},
		{in: "1:2:3:4"},
		{in: "-3"},
		{in: "ab"},
	}
	for _, tc := range tests {
		got, err := parseClock(tc.in)
		if tc.ok != (err == nil) || (tc.ok && got != tc.want) {
			t.Fatalf("parseClock(%q) = %v, %v", tc.in, got, err)
		}
	}
}
