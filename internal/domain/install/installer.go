package install

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fractalic-hive/hivectl/internal/domain/registry"
	"github.com/fractalic-hive/hivectl/internal/domain/resolve"
	"github.com/fractalic-hive/hivectl/internal/logger"
)

// Phase names the installation step an error occurred in.
type Phase string

const (
	PhaseResolve Phase = "resolve"
	PhaseFetch   Phase = "fetch"
	PhaseWrite   Phase = "write"
)

// InstallError reports a per-tool installation failure with enough context to
// retry just that tool. Failures never propagate across tools.
type InstallError struct {
	Tool  string
	Phase Phase
	Err   error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installation failed: tool %s: %s: %v", e.Tool, e.Phase, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Result describes one completed (or skipped) install.
type Result struct {
	ID               string        `json:"id"`
	Tool             string        `json:"tool"`
	Files            []string      `json:"files,omitempty"`
	AlreadyInstalled bool          `json:"already_installed,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// Outcome pairs a tool with its install result for batch operations.
type Outcome struct {
	Tool   *registry.Tool
	Result *Result
	Err    error
}

// Installer fetches a tool's primary artifact plus its sidecar dependencies
// into root/<category>/<subcategory>/. Each tool installs all-or-nothing;
// concurrent requests for the same tool collapse into one in-flight fetch
// sequence while distinct tools proceed in parallel.
type Installer struct {
	src     resolve.Source
	fetcher *Fetcher
	lister  resolve.DirLister
	root    string
	state   *State
	group   singleflight.Group
}

// NewInstaller loads the lockfile under root and returns a ready installer.
func NewInstaller(src resolve.Source, fetcher *Fetcher, lister resolve.DirLister, root string) (*Installer, error) {
	state, err := LoadState(root)
	if err != nil {
		return nil, err
	}
	return &Installer{
		src:     src,
		fetcher: fetcher,
		lister:  lister,
		root:    root,
		state:   state,
	}, nil
}

// State exposes the install ledger for status listings.
func (i *Installer) State() *State { return i.state }

// Install fetches one tool. Re-installing an already-installed tool is a
// no-op success; a second concurrent request for an in-flight tool waits for
// and shares the in-flight result.
func (i *Installer) Install(ctx context.Context, t *registry.Tool) (*Result, error) {
	v, err, _ := i.group.Do(t.Path, func() (interface{}, error) {
		return i.install(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// InstallAll installs every tool, isolating failures per tool. The returned
// outcomes are index-aligned with tools.
func (i *Installer) InstallAll(ctx context.Context, tools []*registry.Tool) []Outcome {
	outcomes := make([]Outcome, len(tools))
	var g errgroup.Group
	g.SetLimit(4)

	for idx, t := range tools {
		idx, t := idx, t
		g.Go(func() error {
			res, err := i.Install(ctx, t)
			outcomes[idx] = Outcome{Tool: t, Result: res, Err: err}
			return nil // per-tool errors stay in the outcome
		})
	}
	g.Wait()
	return outcomes
}

func (i *Installer) install(ctx context.Context, t *registry.Tool) (*Result, error) {
	start := time.Now()

	if _, ok := i.state.Installed(t.Path); ok {
		return &Result{
			ID:               uuid.NewString(),
			Tool:             t.Name,
			AlreadyInstalled: true,
			Duration:         time.Since(start),
		}, nil
	}

	primaryURL, err := resolve.ToolURL(i.src, t.Path)
	if err != nil {
		return nil, &InstallError{Tool: t.Name, Phase: PhaseResolve, Err: err}
	}

	deps, err := t.Dependencies(func() ([]string, error) {
		return resolve.Dependencies(ctx, i.lister, t.Path)
	})
	if err != nil {
		return nil, &InstallError{Tool: t.Name, Phase: PhaseResolve, Err: err}
	}

	destDir := filepath.Join(i.root, resolve.Segment(t.Category))
	if t.Subcategory != "" {
		destDir = filepath.Join(destDir, resolve.Segment(t.Subcategory))
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, &InstallError{Tool: t.Name, Phase: PhaseWrite, Err: err}
	}

	var written []string
	rollback := func() {
		for _, f := range written {
			os.Remove(f)
		}
	}

	fetchOne := func(relPath string, mode os.FileMode) error {
		url, err := resolve.FileURL(i.src, relPath)
		if err != nil {
			return &InstallError{Tool: t.Name, Phase: PhaseResolve, Err: err}
		}
		body, err := i.fetcher.Fetch(ctx, url)
		if err != nil {
			return &InstallError{Tool: t.Name, Phase: PhaseFetch, Err: err}
		}
		dest := filepath.Join(destDir, path.Base(relPath))
		if err := os.WriteFile(dest, body, mode); err != nil {
			return &InstallError{Tool: t.Name, Phase: PhaseWrite, Err: err}
		}
		written = append(written, dest)
		return nil
	}

	if err := fetchOne(t.Path, 0o755); err != nil {
		rollback()
		return nil, err
	}
	for _, dep := range deps {
		if err := fetchOne(dep, 0o644); err != nil {
			rollback()
			return nil, err
		}
	}

	rec := InstalledTool{
		Name:        t.Name,
		URL:         primaryURL,
		Files:       append([]string(nil), written...),
		InstalledAt: time.Now().UTC(),
	}
	if err := i.state.MarkInstalled(t.Path, rec); err != nil {
		rollback()
		return nil, &InstallError{Tool: t.Name, Phase: PhaseWrite, Err: err}
	}

	logger.AddLog("INFO", fmt.Sprintf("installed %s (%d files) into %s", t.Name, len(written), destDir))
	return &Result{
		ID:       uuid.NewString(),
		Tool:     t.Name,
		Files:    written,
		Duration: time.Since(start),
	}, nil
}

// ArtifactPath returns where a tool's primary file lives under the install
// root, regardless of whether it is currently installed.
func (i *Installer) ArtifactPath(t *registry.Tool) string {
	destDir := filepath.Join(i.root, resolve.Segment(t.Category))
	if t.Subcategory != "" {
		destDir = filepath.Join(destDir, resolve.Segment(t.Subcategory))
	}
	return filepath.Join(destDir, path.Base(t.Path))
}
