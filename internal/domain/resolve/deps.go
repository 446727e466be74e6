package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sidecar filename conventions. A requirements file pins a tool's Python
// dependencies; *_helpers.py modules are shared between tools in the same
// directory (the hubspot suite ships one next to every tool).
const requirementsFile = "requirements.txt"

const helpersSuffix = "_helpers.py"

// DirLister enumerates the file names in one repository directory. Listing
// never recurses: sidecars deeper than the tool's own directory are out of
// scope by design.
type DirLister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Dependencies resolves the sidecar set for a tool path using the given
// lister. The returned paths are repository-relative in the same "./" form as
// tool paths. An empty set is valid and common.
func Dependencies(ctx context.Context, lister DirLister, toolPath string) ([]string, error) {
	trimmed := strings.TrimPrefix(toolPath, "./")
	dir := path.Dir(trimmed)
	names, err := lister.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var deps []string
	for _, name := range Sidecars(names, path.Base(trimmed)) {
		deps = append(deps, "./"+path.Join(dir, name))
	}
	return deps, nil
}

// Sidecars filters a directory listing down to recognized auxiliary files,
// excluding the tool file itself.
func Sidecars(names []string, toolFile string) []string {
	var out []string
	for _, name := range names {
		if name == toolFile {
			continue
		}
		if name == requirementsFile || strings.HasSuffix(name, helpersSuffix) {
			out = append(out, name)
		}
	}
	return out
}

// GitHubLister lists a repository directory through the GitHub contents API.
type GitHubLister struct {
	Client *http.Client
	Src    Source
}

func (l *GitHubLister) List(ctx context.Context, dir string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Src.ContentsURL(dir), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// A tool whose directory vanished upstream simply has no sidecars;
		// the primary fetch will surface the real failure.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("contents API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding contents listing: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type == "file" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// LocalLister lists directories under a local tree. Used by tests and when
// the marketplace source is a checked-out repository on disk.
type LocalLister struct {
	Root string
}

func (l *LocalLister) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, filepath.FromSlash(dir)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
