package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecars(t *testing.T) {
	names := []string{
		"read.py",
		"requirements.txt",
		"hubspot_helpers.py",
		"other_tool.py",
		"README.md",
	}

	got := Sidecars(names, "read.py")
	assert.Equal(t, []string{"requirements.txt", "hubspot_helpers.py"}, got)
}

func TestSidecars_ExcludesToolItself(t *testing.T) {
	// A tool named like a helper must not list itself as its own sidecar.
	got := Sidecars([]string{"crm_helpers.py", "requirements.txt"}, "crm_helpers.py")
	assert.Equal(t, []string{"requirements.txt"}, got)
}

func TestSidecars_Empty(t *testing.T) {
	assert.Empty(t, Sidecars([]string{"read.py", "notes.md"}, "read.py"))
	assert.Empty(t, Sidecars(nil, "read.py"))
}

func TestDependencies_LocalLister(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "integrations", "hubspot")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"crm.py", "requirements.txt", "hubspot_helpers.py", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	// Sidecar discovery must not recurse into nested directories.
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "requirements.txt"), []byte("x"), 0o644))

	deps, err := Dependencies(context.Background(), &LocalLister{Root: root}, "./integrations/hubspot/crm.py")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"./integrations/hubspot/requirements.txt",
		"./integrations/hubspot/hubspot_helpers.py",
	}, deps)
}

func TestDependencies_MissingDirHasNoSidecars(t *testing.T) {
	deps, err := Dependencies(context.Background(), &LocalLister{Root: t.TempDir()}, "./gone/tool.py")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

type failingLister struct{ err error }

func (l *failingLister) List(context.Context, string) ([]string, error) { return nil, l.err }

func TestDependencies_ListerErrorPropagates(t *testing.T) {
	boom := errors.New("contents API returned 500")
	_, err := Dependencies(context.Background(), &failingLister{err: boom}, "./a/b.py")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
