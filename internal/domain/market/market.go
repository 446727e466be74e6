// Package market orchestrates the marketplace lifecycle: manifest fetch →
// registry build → per-tool install → autodiscovery verification.
package market

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/fractalic-hive/hivectl/internal/domain/install"
	"github.com/fractalic-hive/hivectl/internal/domain/manifest"
	"github.com/fractalic-hive/hivectl/internal/domain/registry"
	"github.com/fractalic-hive/hivectl/internal/domain/resolve"
	"github.com/fractalic-hive/hivectl/internal/domain/verify"
	"github.com/fractalic-hive/hivectl/internal/logger"
)

// Market is the top-level coordinator the CLI talks to. The registry behind
// it is read-only; Refresh builds a replacement and swaps it atomically, so
// concurrent readers never observe a half-built catalog.
type Market struct {
	src          resolve.Source
	manifestPath string
	fetcher      *install.Fetcher
	installer    *install.Installer
	verifier     *verify.Verifier
	verifyState  *verify.Store

	store registry.Store
}

// New wires a market from its collaborators.
func New(src resolve.Source, manifestPath string, fetcher *install.Fetcher, installer *install.Installer, verifier *verify.Verifier, verifyState *verify.Store) *Market {
	return &Market{
		src:          src,
		manifestPath: manifestPath,
		fetcher:      fetcher,
		installer:    installer,
		verifier:     verifier,
		verifyState:  verifyState,
	}
}

// Refresh fetches the manifest, builds a fresh registry, and swaps it in.
// On a build failure the previously active registry stays in place.
func (m *Market) Refresh(ctx context.Context) (*registry.Registry, error) {
	body, err := m.fetcher.Fetch(ctx, m.src.ManifestURL(m.manifestPath))
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	return m.rebuild(string(body))
}

// RefreshFromText rebuilds the registry from already-loaded manifest text.
func (m *Market) RefreshFromText(text string) (*registry.Registry, error) {
	return m.rebuild(text)
}

func (m *Market) rebuild(text string) (*registry.Registry, error) {
	reg, err := registry.Build(manifest.Parse(text))
	if err != nil {
		return nil, err
	}
	for _, t := range reg.Tools() {
		if url, uerr := resolve.ToolURL(m.src, t.Path); uerr == nil {
			t.SourceURL = url
		}
	}
	m.store.Swap(reg)
	logger.AddLog("INFO", fmt.Sprintf("registry rebuilt: %d tools, %d warnings", reg.TotalTools, len(reg.Warnings)))
	return reg, nil
}

// Registry returns the active catalog, fetching it on first use.
func (m *Market) Registry(ctx context.Context) (*registry.Registry, error) {
	if reg := m.store.Current(); reg != nil {
		return reg, nil
	}
	return m.Refresh(ctx)
}

var fold = cases.Fold()

// Search returns tools whose name or description contains the query
// (case-folded). An empty query matches everything; category narrows the
// result to one category title.
func (m *Market) Search(ctx context.Context, query, category string) ([]*registry.Tool, error) {
	reg, err := m.Registry(ctx)
	if err != nil {
		return nil, err
	}

	q := fold.String(query)
	cat := fold.String(category)
	var out []*registry.Tool
	for _, t := range reg.Tools() {
		if category != "" && fold.String(t.Category) != cat {
			continue
		}
		if q == "" ||
			strings.Contains(fold.String(t.Name), q) ||
			strings.Contains(fold.String(t.Description), q) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Install resolves a tool by name or path, installs it, then runs the
// autodiscovery verification and persists the outcome. The install result
// and verification report are returned together; a verification failure is
// not an install error, the tool stays on disk flagged.
func (m *Market) Install(ctx context.Context, nameOrPath string) (*install.Result, *verify.Report, error) {
	t, err := m.lookup(ctx, nameOrPath)
	if err != nil {
		return nil, nil, err
	}

	res, err := m.installer.Install(ctx, t)
	if err != nil {
		return nil, nil, err
	}

	rep := m.verify(ctx, t)
	return res, rep, nil
}

// InstallAll installs every tool in the registry (optionally one category),
// isolating per-tool failures, then verifies each successful install.
func (m *Market) InstallAll(ctx context.Context, category string) ([]install.Outcome, []*verify.Report, error) {
	tools, err := m.Search(ctx, "", category)
	if err != nil {
		return nil, nil, err
	}

	outcomes := m.installer.InstallAll(ctx, tools)

	var reports []*verify.Report
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		reports = append(reports, m.verify(ctx, o.Tool))
	}
	return outcomes, reports, nil
}

// Verify re-runs the autodiscovery checks for an installed tool.
func (m *Market) Verify(ctx context.Context, nameOrPath string) (*verify.Report, error) {
	t, err := m.lookup(ctx, nameOrPath)
	if err != nil {
		return nil, err
	}
	if _, ok := m.installer.State().Installed(t.Path); !ok {
		return nil, fmt.Errorf("tool %s is not installed", t.Name)
	}
	return m.verify(ctx, t), nil
}

// Schema dumps and validates an installed tool's self-described schema.
func (m *Market) Schema(ctx context.Context, nameOrPath string) (*verify.ToolSchema, error) {
	t, err := m.lookup(ctx, nameOrPath)
	if err != nil {
		return nil, err
	}
	if _, ok := m.installer.State().Installed(t.Path); !ok {
		return nil, fmt.Errorf("tool %s is not installed", t.Name)
	}
	return m.verifier.Schema(ctx, m.installer.ArtifactPath(t))
}

// RetryFailed re-verifies every tool whose last verification failed.
func (m *Market) RetryFailed(ctx context.Context) ([]*verify.Report, error) {
	reg, err := m.Registry(ctx)
	if err != nil {
		return nil, err
	}
	var reports []*verify.Report
	for _, path := range m.verifyState.Failed() {
		t := reg.Find(path)
		if t == nil {
			continue // tool left the manifest since the last run
		}
		reports = append(reports, m.verify(ctx, t))
	}
	return reports, nil
}

// Status returns the persisted verification record for a tool path.
func (m *Market) Status(toolPath string) (verify.Record, bool) {
	return m.verifyState.Get(toolPath)
}

// Installed reports whether a tool path is recorded as installed.
func (m *Market) Installed(toolPath string) bool {
	_, ok := m.installer.State().Installed(toolPath)
	return ok
}

// ArtifactPath exposes the on-disk location of a tool's primary file.
func (m *Market) ArtifactPath(t *registry.Tool) string {
	return m.installer.ArtifactPath(t)
}

func (m *Market) verify(ctx context.Context, t *registry.Tool) *verify.Report {
	rep := m.verifier.Verify(ctx, t.Name, m.installer.ArtifactPath(t))
	if err := m.verifyState.SetFromReport(t.Path, rep); err != nil {
		logger.AddLog("WARN", fmt.Sprintf("persisting verification state for %s: %v", t.Name, err))
	}
	return rep
}

func (m *Market) lookup(ctx context.Context, nameOrPath string) (*registry.Tool, error) {
	reg, err := m.Registry(ctx)
	if err != nil {
		return nil, err
	}
	t := reg.Find(nameOrPath)
	if t == nil {
		return nil, fmt.Errorf("tool %q not found in registry", nameOrPath)
	}
	return t, nil
}
