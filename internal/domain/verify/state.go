package verify

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// StateFileName holds per-tool verification status next to the install root.
// VerificationFailed tools stay recorded here so they can be re-verified
// after the user fixes environment prerequisites, without reinstalling.
const StateFileName = "verify-state.yaml"

// Record is the persisted verification status of one tool.
type Record struct {
	Status    Status    `yaml:"status"`
	Failure   string    `yaml:"failure,omitempty"`
	Reason    string    `yaml:"reason,omitempty"`
	CheckedAt time.Time `yaml:"checked_at"`
}

type stateDoc struct {
	Tools map[string]Record `yaml:"tools"`
}

// Store persists verification records to a YAML file.
type Store struct {
	path string

	mu    sync.Mutex
	tools map[string]Record
}

// LoadStore reads the state file under root, starting empty when missing.
func LoadStore(root string) (*Store, error) {
	s := &Store{
		path:  filepath.Join(root, StateFileName),
		tools: make(map[string]Record),
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var doc stateDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Tools != nil {
		s.tools = doc.Tools
	}
	return s, nil
}

// Get returns the record for a tool path.
func (s *Store) Get(toolPath string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tools[toolPath]
	return rec, ok
}

// SetFromReport records a verification outcome and saves.
func (s *Store) SetFromReport(toolPath string, rep *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[toolPath] = Record{
		Status:    rep.Status,
		Failure:   string(rep.Failure),
		Reason:    rep.Reason,
		CheckedAt: time.Now().UTC(),
	}
	return s.save()
}

// Failed lists tool paths whose last verification did not pass.
func (s *Store) Failed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for path, rec := range s.tools {
		if rec.Status == StatusFailed {
			out = append(out, path)
		}
	}
	return out
}

func (s *Store) save() error {
	data, err := yaml.Marshal(stateDoc{Tools: s.tools})
	if err != nil {
		return err
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
