package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fractalic-hive/hivectl/internal/logger"
)

// Autodiscovery protocol constants. Every installable artifact must answer
// the exact test payload and the schema-dump flag on its standard invocation
// surface.
const (
	TestPayload    = `{"__test__": true}`
	SchemaDumpFlag = "--fractalic-dump-schema"
)

// Status is the verification state of one tool.
type Status string

const (
	StatusUnverified     Status = "unverified"
	StatusTestPassed     Status = "test-passed"
	StatusSchemaExported Status = "schema-exported"
	StatusVerified       Status = "verified"
	StatusFailed         Status = "verification-failed"
)

// FailureKind distinguishes why verification failed, so a user can tell a
// missing credential from a tool that simply does not speak the protocol.
type FailureKind string

const (
	FailTimeout           FailureKind = "timeout"
	FailProtocol          FailureKind = "protocol"
	FailMissingCredential FailureKind = "missing-credential"
)

// Report is the outcome of verifying one installed artifact.
type Report struct {
	Tool             string        `json:"tool"`
	Script           string        `json:"script"`
	Status           Status        `json:"status"`
	Failure          FailureKind   `json:"failure,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	SchemaWarning    string        `json:"schema_warning,omitempty"`
	Schema           *ToolSchema   `json:"schema,omitempty"`
	HandshakeLatency time.Duration `json:"handshake_latency_ns,omitempty"`
}

// Verified reports whether the tool may be exposed to end users.
func (r *Report) Verified() bool { return r.Status == StatusVerified }

// Verifier is the client side of the autodiscovery protocol.
type Verifier struct {
	runner     Runner
	TestBudget time.Duration // handshake wall-clock budget
	ExecBudget time.Duration // budget for schema dump and execution probe
}

// NewVerifier returns a verifier with the protocol's default budgets: 200ms
// for the test handshake, 10s for the heavier invocations.
func NewVerifier(runner Runner) *Verifier {
	return &Verifier{
		runner:     runner,
		TestBudget: 200 * time.Millisecond,
		ExecBudget: 10 * time.Second,
	}
}

// Verify drives the protocol state machine for one installed artifact:
// Unverified → TestPassed → SchemaExported → Verified, or a terminal
// VerificationFailed when a required step does not conform. The schema export
// is the one optional step: its absence is recorded as a warning, not a
// failure. The tool stays installed either way.
func (v *Verifier) Verify(ctx context.Context, toolName, script string) *Report {
	rep := &Report{Tool: toolName, Script: script, Status: StatusUnverified}

	// Required: test handshake within budget.
	inv, err := v.runner.Run(ctx, script, TestPayload, v.TestBudget)
	if err != nil {
		v.fail(rep, inv, err, "test handshake")
		return rep
	}
	if reason := checkHandshake(inv.Stdout); reason != "" {
		rep.Status = StatusFailed
		rep.Failure = FailProtocol
		rep.Reason = fmt.Sprintf("test handshake: %s", reason)
		return rep
	}
	rep.Status = StatusTestPassed
	rep.HandshakeLatency = inv.Duration

	// Optional: schema export.
	inv, err = v.runner.Run(ctx, script, SchemaDumpFlag, v.ExecBudget)
	if err != nil {
		rep.SchemaWarning = fmt.Sprintf("schema dump failed: %v", err)
	} else if schema, serr := ValidateSchema(inv.Stdout); serr != nil {
		rep.SchemaWarning = fmt.Sprintf("schema dump malformed: %v", serr)
	} else {
		rep.Schema = schema
		rep.Status = StatusSchemaExported
	}

	// Required: execution probe. Any outcome is acceptable as long as the
	// tool answers with a JSON object; structured errors conform, uncaught
	// crashes and unstructured text do not.
	inv, err = v.runner.Run(ctx, script, "{}", v.ExecBudget)
	if err != nil && !hasJSONObject(inv) {
		v.fail(rep, inv, err, "execution probe")
		return rep
	}
	if !hasJSONObject(inv) {
		rep.Status = StatusFailed
		rep.Failure = FailProtocol
		rep.Reason = "execution probe: output is not a JSON object"
		return rep
	}

	rep.Status = StatusVerified
	logger.AddLog("INFO", fmt.Sprintf("verified %s (handshake %v)", toolName, rep.HandshakeLatency))
	return rep
}

// Schema runs only the schema-dump invocation and validates the result.
func (v *Verifier) Schema(ctx context.Context, script string) (*ToolSchema, error) {
	inv, err := v.runner.Run(ctx, script, SchemaDumpFlag, v.ExecBudget)
	if err != nil {
		return nil, fmt.Errorf("schema dump: %w", err)
	}
	return ValidateSchema(inv.Stdout)
}

func (v *Verifier) fail(rep *Report, inv *Invocation, err error, step string) {
	rep.Status = StatusFailed
	if isTimeout(err) {
		rep.Failure = FailTimeout
		rep.Reason = fmt.Sprintf("%s: %v", step, err)
		return
	}
	rep.Failure, rep.Reason = classify(inv, err, step)
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// checkHandshake validates the test response body. Empty string means pass.
func checkHandshake(stdout []byte) string {
	var m map[string]interface{}
	if err := json.Unmarshal(stdout, &m); err != nil {
		return "response is not JSON"
	}
	if ok, _ := m["success"].(bool); !ok {
		return `response missing "success": true`
	}
	if simple, _ := m["_simple"].(bool); !simple {
		return `response missing "_simple": true`
	}
	return ""
}

func hasJSONObject(inv *Invocation) bool {
	if inv == nil {
		return false
	}
	var m map[string]interface{}
	if err := json.Unmarshal(inv.Stdout, &m); err != nil {
		return false
	}
	// "null" unmarshals cleanly but leaves the map nil; only a real object
	// counts as structured output.
	return m != nil
}

// Credential phrasing the original tools emit when an API key is absent.
// Mirrors the stderr classification the stdio worker does for MCP servers.
var credentialMarkers = []string{
	"environment variable is required",
	"environment variable",
	"api key",
	"api token",
	"credential",
}

func classify(inv *Invocation, err error, step string) (FailureKind, string) {
	text := err.Error()
	if inv != nil {
		text += " " + string(inv.Stderr) + " " + string(inv.Stdout)
	}
	lowered := strings.ToLower(text)
	for _, marker := range credentialMarkers {
		if strings.Contains(lowered, marker) {
			return FailMissingCredential, fmt.Sprintf("%s: missing credential: %v", step, err)
		}
	}
	return FailProtocol, fmt.Sprintf("%s: %v", step, err)
}
