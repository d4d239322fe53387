package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movieorg/internal/testsupport"
)

type cliTestEnv struct {
	backend    *testsupport.Backend
	configPath string
	dataDir    string
	logDir     string
}

func setupCLITestEnv(t *testing.T, movies ...testsupport.Movie) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"MOVIEORG_BACKEND_URL", "MOVIEORG_DATA_DIR", "MOVIEORG_LOG_DIR", "MOVIEORG_LOG_LEVEL", "MOVIEORG_LOG_FORMAT", "MOVIEORG_GENRES", "MOVIEORG_BACKEND_TIMEOUT", "MOVIEORG_NTFY_TOPIC"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	fake := testsupport.NewBackend(t, movies...)
	env := &cliTestEnv{
		backend:    fake,
		configPath: filepath.Join(base, "config.toml"),
		dataDir:    filepath.Join(base, "data"),
		logDir:     filepath.Join(base, "logs"),
	}
	writeTestConfig(t, env.configPath, fake.URL, env.dataDir, env.logDir)
	return env
}

func writeTestConfig(t *testing.T, path, backendURL, dataDir, logDir string) {
	t.Helper()
	content := fmt.Sprintf(`[backend]
url = %q
timeout_seconds = 5

[library]
movie_folders = [%q]
genres = ["Action", "Comedy", "Drama", "Horror"]

[paths]
data_dir = %q
log_dir = %q

[ui]
suggestion_error_seconds = 1
summary_seconds = 0
color = false
progress = false

[logging]
level = "error"
`, backendURL, testsupport.DefaultFolder, dataDir, logDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// appendConfig adds TOML tables after the generated [logging] table.
func appendConfig(t *testing.T, env *cliTestEnv, content string) {
	t.Helper()
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n" + content); err != nil {
		t.Fatalf("append config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
