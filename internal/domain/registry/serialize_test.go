package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractalic-hive/hivectl/internal/domain/manifest"
)

func TestManifest_RoundTripStable(t *testing.T) {
	reg, err := Build(manifest.Parse(wellFormed))
	require.NoError(t, err)

	serialized := reg.Manifest()
	reparsed, err := Build(manifest.Parse(serialized))
	require.NoError(t, err)

	assert.Equal(t, reg.TotalTools, reparsed.TotalTools)
	assert.Equal(t, len(reg.Categories), len(reparsed.Categories))
	for i, cat := range reg.Categories {
		got := reparsed.Categories[i]
		assert.Equal(t, cat.Title, got.Title)
		assert.Equal(t, cat.Icon, got.Icon)
		assert.Equal(t, cat.DeclaredCount, got.DeclaredCount)
	}

	// A second cycle produces byte-identical text.
	assert.Equal(t, serialized, reparsed.Manifest())
}

func TestManifest_SingularCount(t *testing.T) {
	reg, err := Build(manifest.Parse("### Core (1 tool)\n- [read](./read.py) - Read a file"))
	require.NoError(t, err)

	out := reg.Manifest()
	assert.Contains(t, out, "### Core (1 tool)\n")
	assert.Contains(t, out, "- [read](./read.py) - Read a file\n")
}

func TestManifest_KeepsDeclaredCounts(t *testing.T) {
	// Serialization echoes the declared count even when it drifted from the
	// retained tools, so the mismatch warning survives a round trip.
	reg, err := Build(manifest.Parse("### Core (5 tools)\n- [read](./read.py) - Read a file"))
	require.NoError(t, err)

	out := reg.Manifest()
	assert.Contains(t, out, "(5 tools)")

	reparsed, err := Build(manifest.Parse(out))
	require.NoError(t, err)
	require.Len(t, reparsed.Warnings, 1)
	assert.Equal(t, WarnCountMismatch, reparsed.Warnings[0].Kind)
}
