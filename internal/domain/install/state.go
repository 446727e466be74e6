package install

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// StateFileName is the lockfile recording what has been installed, written at
// the destination root.
const StateFileName = "installed.toml"

// InstalledTool is one lockfile record, keyed by the tool's manifest path.
type InstalledTool struct {
	Name        string    `toml:"name"`
	URL         string    `toml:"url"`
	Files       []string  `toml:"files"`
	InstalledAt time.Time `toml:"installed_at"`
}

type stateFile struct {
	Tools map[string]InstalledTool `toml:"tools"`
}

// State is the persistent install ledger. All mutations are written through
// to disk immediately so a second process sees a consistent view.
type State struct {
	path string

	mu    sync.Mutex
	tools map[string]InstalledTool
}

// LoadState reads the lockfile under root, starting empty when none exists.
func LoadState(root string) (*State, error) {
	s := &State{
		path:  filepath.Join(root, StateFileName),
		tools: make(map[string]InstalledTool),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var doc stateFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if doc.Tools != nil {
		s.tools = doc.Tools
	}
	return s, nil
}

// Installed returns the record for a tool path, if present.
func (s *State) Installed(toolPath string) (InstalledTool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tools[toolPath]
	return rec, ok
}

// MarkInstalled records a completed install and saves the lockfile.
func (s *State) MarkInstalled(toolPath string, rec InstalledTool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[toolPath] = rec
	return s.save()
}

// Forget removes a tool's record (uninstall or rollback) and saves.
func (s *State) Forget(toolPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tools, toolPath)
	return s.save()
}

// save writes the lockfile atomically: temp file then rename. Caller holds mu.
func (s *State) save() error {
	data, err := toml.Marshal(stateFile{Tools: s.tools})
	if err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
