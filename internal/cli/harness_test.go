package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CLI runs smapcheck in-process against a per-test working directory.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{t: t, Dir: t.TempDir(), Env: map[string]string{}}
}

// Run invokes smapcheck with args after the implicit "--cwd Dir" and
// returns stdout, stderr and the exit code.
func (c *CLI) Run(args ...string) (string, string, int) {
	return c.RunWithInput("", args...)
}

// RunWithInput is Run with stdin.
func (c *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	var stdout, stderr bytes.Buffer

	argv := append([]string{"smapcheck", "--cwd", c.Dir}, args...)
	code := Run(strings.NewReader(stdin), &stdout, &stderr, argv, c.Env, nil)

	return stdout.String(), stderr.String(), code
}

// MustRun requires exit code 0 and returns trimmed stdout.
func (c *CLI) MustRun(args ...string) string {
	c.t.Helper()

	return strings.TrimSpace(c.mustExit(exitOK, args, true))
}

// MustFail requires exit code 1 and returns trimmed stderr.
func (c *CLI) MustFail(args ...string) string {
	c.t.Helper()

	return strings.TrimSpace(c.mustExit(exitError, args, false))
}

// MustDiverge requires exit code 2 and returns stdout.
func (c *CLI) MustDiverge(args ...string) string {
	c.t.Helper()

	return c.mustExit(exitDivergence, args, true)
}

func (c *CLI) mustExit(want int, args []string, wantStdout bool) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	require.Equalf(c.t, want, code, "smapcheck %v\nstdout:\n%s\nstderr:\n%s", args, stdout, stderr)

	if wantStdout {
		return stdout
	}

	return stderr
}

// WriteFile writes content to name under Dir and returns the full path.
func (c *CLI) WriteFile(name, content string) string {
	c.t.Helper()

	path := filepath.Join(c.Dir, name)
	require.NoError(c.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(c.t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// ReadFile returns the content of name under Dir.
func (c *CLI) ReadFile(name string) string {
	c.t.Helper()

	data, err := os.ReadFile(filepath.Join(c.Dir, name))
	require.NoError(c.t, err)

	return string(data)
}

func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("missing %q in:\n%s", substr, content)
	}
}

func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("unexpected %q in:\n%s", substr, content)
	}
}
