package verify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSchemaJSON = `{
	"name": "read",
	"description": "Read a file from disk",
	"parameters": {
		"type": "object",
		"properties": {"path": {"type": "string"}},
		"required": ["path"]
	}
}`

type stubInvocation struct {
	stdout string
	stderr string
	err    error
	dur    time.Duration
}

// stubRunner answers each protocol argument from a fixed script.
type stubRunner struct {
	byArg map[string]stubInvocation
}

func (r *stubRunner) Run(_ context.Context, _, arg string, _ time.Duration) (*Invocation, error) {
	inv, ok := r.byArg[arg]
	if !ok {
		return &Invocation{}, fmt.Errorf("unexpected invocation arg %q", arg)
	}
	return &Invocation{
		Stdout:   []byte(inv.stdout),
		Stderr:   []byte(inv.stderr),
		Duration: inv.dur,
	}, inv.err
}

func conformingRunner() *stubRunner {
	return &stubRunner{byArg: map[string]stubInvocation{
		TestPayload:    {stdout: `{"success": true, "_simple": true}`, dur: 5 * time.Millisecond},
		SchemaDumpFlag: {stdout: validSchemaJSON},
		"{}":           {stdout: `{"status": "success", "result": "ok"}`},
	}}
}

func TestVerify_FullyConforming(t *testing.T) {
	v := NewVerifier(conformingRunner())
	rep := v.Verify(context.Background(), "read", "/tools/read.py")

	assert.Equal(t, StatusVerified, rep.Status)
	assert.True(t, rep.Verified())
	assert.Empty(t, rep.Failure)
	assert.Empty(t, rep.SchemaWarning)
	require.NotNil(t, rep.Schema)
	assert.Equal(t, "read", rep.Schema.Name)
	assert.Equal(t, 5*time.Millisecond, rep.HandshakeLatency)
}

func TestVerify_HandshakeTimeout(t *testing.T) {
	r := conformingRunner()
	r.byArg[TestPayload] = stubInvocation{err: fmt.Errorf("%w after 200ms", ErrTimeout)}

	rep := NewVerifier(r).Verify(context.Background(), "slow", "/tools/slow.py")
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, FailTimeout, rep.Failure)
	assert.Contains(t, rep.Reason, "test handshake")
	assert.False(t, rep.Verified())
}

func TestVerify_HandshakeNotJSON(t *testing.T) {
	r := conformingRunner()
	r.byArg[TestPayload] = stubInvocation{stdout: "Usage: read.py [options]"}

	rep := NewVerifier(r).Verify(context.Background(), "legacy", "/tools/legacy.py")
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, FailProtocol, rep.Failure)
	assert.Contains(t, rep.Reason, "not JSON")
}

func TestVerify_HandshakeMissingMarkers(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
	}{
		{"missing success", `{"_simple": true}`},
		{"success false", `{"success": false, "_simple": true}`},
		{"missing _simple", `{"success": true}`},
		{"success wrong type", `{"success": "yes", "_simple": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := conformingRunner()
			r.byArg[TestPayload] = stubInvocation{stdout: tt.stdout}

			rep := NewVerifier(r).Verify(context.Background(), "t", "/tools/t.py")
			assert.Equal(t, StatusFailed, rep.Status)
			assert.Equal(t, FailProtocol, rep.Failure)
		})
	}
}

func TestVerify_SchemaFailureIsWarningOnly(t *testing.T) {
	r := conformingRunner()
	r.byArg[SchemaDumpFlag] = stubInvocation{stdout: "", err: errors.New("exit status 2")}

	rep := NewVerifier(r).Verify(context.Background(), "read", "/tools/read.py")
	assert.Equal(t, StatusVerified, rep.Status, "schema export is optional")
	assert.NotEmpty(t, rep.SchemaWarning)
	assert.Nil(t, rep.Schema)
}

func TestVerify_SchemaMalformedIsWarningOnly(t *testing.T) {
	r := conformingRunner()
	r.byArg[SchemaDumpFlag] = stubInvocation{stdout: `{"name": "read"}`}

	rep := NewVerifier(r).Verify(context.Background(), "read", "/tools/read.py")
	assert.Equal(t, StatusVerified, rep.Status)
	assert.Contains(t, rep.SchemaWarning, "malformed")
}

func TestVerify_StructuredErrorStillConforms(t *testing.T) {
	// A tool may exit non-zero on the probe as long as it reported the error
	// as a JSON object.
	r := conformingRunner()
	r.byArg["{}"] = stubInvocation{
		stdout: `{"status": "error", "error": "path is required"}`,
		err:    errors.New("exit status 1"),
	}

	rep := NewVerifier(r).Verify(context.Background(), "read", "/tools/read.py")
	assert.Equal(t, StatusVerified, rep.Status)
}

func TestVerify_UnstructuredProbeOutputFails(t *testing.T) {
	r := conformingRunner()
	r.byArg["{}"] = stubInvocation{stdout: "Traceback (most recent call last):\n  KeyError: 'path'"}

	rep := NewVerifier(r).Verify(context.Background(), "crashy", "/tools/crashy.py")
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, FailProtocol, rep.Failure)
	assert.Contains(t, rep.Reason, "execution probe")
}

func TestVerify_NullProbeOutputFails(t *testing.T) {
	// "null" is valid JSON but not an object; a tool printing it has not
	// produced a structured result.
	r := conformingRunner()
	r.byArg["{}"] = stubInvocation{stdout: "null"}

	rep := NewVerifier(r).Verify(context.Background(), "nully", "/tools/nully.py")
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, FailProtocol, rep.Failure)
	assert.Contains(t, rep.Reason, "not a JSON object")
}

func TestVerify_MissingCredentialClassified(t *testing.T) {
	r := conformingRunner()
	r.byArg["{}"] = stubInvocation{
		stderr: "Error: HUBSPOT_TOKEN environment variable is required",
		err:    errors.New("exit status 1"),
	}

	rep := NewVerifier(r).Verify(context.Background(), "crm", "/tools/crm.py")
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, FailMissingCredential, rep.Failure)
}

func TestVerifier_Schema(t *testing.T) {
	v := NewVerifier(conformingRunner())
	schema, err := v.Schema(context.Background(), "/tools/read.py")
	require.NoError(t, err)
	assert.Equal(t, "read", schema.Name)
	assert.Equal(t, "object", schema.Parameters["type"])
}
