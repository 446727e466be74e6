package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	script := writeScript(t, `echo "arg=$1"
echo "oops" >&2
`)
	r := &ExecRunner{Interpreter: "sh"}
	inv, err := r.Run(context.Background(), script, "hello", time.Second)
	require.NoError(t, err)

	assert.Equal(t, "arg=hello\n", string(inv.Stdout))
	assert.Equal(t, "oops\n", string(inv.Stderr))
	assert.Greater(t, inv.Duration, time.Duration(0))
}

func TestExecRunner_NonZeroExitReturnsOutputAndError(t *testing.T) {
	script := writeScript(t, `echo '{"status": "error", "error": "bad input"}'
exit 1
`)
	r := &ExecRunner{Interpreter: "sh"}
	inv, err := r.Run(context.Background(), script, "{}", time.Second)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Contains(t, string(inv.Stdout), `"status": "error"`)
}

func TestExecRunner_KillsOnTimeout(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	r := &ExecRunner{Interpreter: "sh"}

	start := time.Now()
	inv, err := r.Run(context.Background(), script, "{}", 50*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotNil(t, inv)
	assert.Less(t, elapsed, 2*time.Second, "child must be killed at the deadline, not awaited")
}

// End-to-end over real child processes: a tool that hangs on the handshake is
// failed within the budget and reported as a timeout.
func TestVerify_SlowToolTimesOut(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	v := NewVerifier(&ExecRunner{Interpreter: "sh"})
	v.TestBudget = 100 * time.Millisecond

	rep := v.Verify(context.Background(), "sleepy", script)
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, FailTimeout, rep.Failure)
}

func TestVerify_ConformingShellTool(t *testing.T) {
	script := writeScript(t, `case "$1" in
'{"__test__": true}')
  echo '{"success": true, "_simple": true}'
  ;;
--fractalic-dump-schema)
  echo '{"name": "demo", "description": "Demo tool for the protocol tests", "parameters": {"type": "object", "properties": {}}}'
  ;;
*)
  echo '{"status": "success", "result": {}}'
  ;;
esac
`)
	v := NewVerifier(&ExecRunner{Interpreter: "sh"})

	rep := v.Verify(context.Background(), "demo", script)
	assert.Equal(t, StatusVerified, rep.Status)
	require.NotNil(t, rep.Schema)
	assert.Equal(t, "demo", rep.Schema.Name)
}
