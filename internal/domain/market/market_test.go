package market

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractalic-hive/hivectl/internal/domain/install"
	"github.com/fractalic-hive/hivectl/internal/domain/resolve"
	"github.com/fractalic-hive/hivectl/internal/domain/verify"
)

const testManifest = `### 🔧 Core (2 tools)

- [read](./development/read.py) - Read a file
- [write](./development/write.py) - Write File contents
`

var marketSrc = resolve.Source{Owner: "fractalic-ai", Repo: "hive", Branch: "main"}

type fakeTransport struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (t *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	body, ok := t.bodies[req.URL.String()]
	t.mu.Unlock()

	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = "not found"
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

type emptyLister struct{}

func (emptyLister) List(context.Context, string) ([]string, error) { return nil, nil }

// okRunner answers every protocol invocation the way a conforming tool does.
type okRunner struct{}

func (okRunner) Run(_ context.Context, _, arg string, _ time.Duration) (*verify.Invocation, error) {
	var stdout string
	switch arg {
	case verify.TestPayload:
		stdout = `{"success": true, "_simple": true}`
	case verify.SchemaDumpFlag:
		stdout = `{"name": "t", "description": "test tool", "parameters": {"type": "object"}}`
	default:
		stdout = `{"status": "success"}`
	}
	return &verify.Invocation{Stdout: []byte(stdout), Duration: time.Millisecond}, nil
}

func newTestMarket(t *testing.T) *Market {
	t.Helper()
	root := t.TempDir()

	transport := &fakeTransport{bodies: map[string]string{
		marketSrc.ManifestURL("TOOLS.md"): testManifest,
		marketSrc.RawBase() + "/development/read.py":  "print('read')",
		marketSrc.RawBase() + "/development/write.py": "print('write')",
	}}
	fetcher := install.NewFetcher(&http.Client{Transport: transport}, 0)

	installer, err := install.NewInstaller(marketSrc, fetcher, emptyLister{}, root)
	require.NoError(t, err)

	vstate, err := verify.LoadStore(root)
	require.NoError(t, err)

	return New(marketSrc, "TOOLS.md", fetcher, installer, verify.NewVerifier(okRunner{}), vstate)
}

func TestRefresh_BuildsRegistry(t *testing.T) {
	m := newTestMarket(t)
	reg, err := m.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, reg.TotalTools)
	read := reg.Find("read")
	require.NotNil(t, read)
	assert.Equal(t, marketSrc.RawBase()+"/development/read.py", read.SourceURL)
}

func TestRefresh_FailedRebuildKeepsOldRegistry(t *testing.T) {
	m := newTestMarket(t)
	old, err := m.Refresh(context.Background())
	require.NoError(t, err)

	_, err = m.RefreshFromText("- [orphan](./orphan.py) - No category above me")
	require.Error(t, err)

	current, err := m.Registry(context.Background())
	require.NoError(t, err)
	assert.Same(t, old, current, "a failed rebuild must leave the active registry in place")
}

func TestSearch_CaseFolded(t *testing.T) {
	m := newTestMarket(t)

	hits, err := m.Search(context.Background(), "FILE", "")
	require.NoError(t, err)
	assert.Len(t, hits, 2, "matches name and description regardless of case")

	hits, err = m.Search(context.Background(), "write", "Core")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "write", hits[0].Name)

	hits, err = m.Search(context.Background(), "write", "Elsewhere")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestInstall_VerifiesAndPersists(t *testing.T) {
	m := newTestMarket(t)

	res, rep, err := m.Install(context.Background(), "read")
	require.NoError(t, err)
	assert.False(t, res.AlreadyInstalled)
	assert.Equal(t, verify.StatusVerified, rep.Status)

	assert.True(t, m.Installed("./development/read.py"))
	rec, ok := m.Status("./development/read.py")
	require.True(t, ok)
	assert.Equal(t, verify.StatusVerified, rec.Status)
}

func TestInstall_UnknownTool(t *testing.T) {
	m := newTestMarket(t)
	_, _, err := m.Install(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in registry")
}

func TestInstallAll_ReturnsPerToolOutcomes(t *testing.T) {
	m := newTestMarket(t)

	outcomes, reports, err := m.InstallAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	require.Len(t, reports, 2)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}
}

func TestVerify_RequiresInstall(t *testing.T) {
	m := newTestMarket(t)
	_, err := m.Verify(context.Background(), "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}

func TestVerify_AfterInstall(t *testing.T) {
	m := newTestMarket(t)
	_, _, err := m.Install(context.Background(), "read")
	require.NoError(t, err)

	rep, err := m.Verify(context.Background(), "read")
	require.NoError(t, err)
	assert.Equal(t, verify.StatusVerified, rep.Status)
}
