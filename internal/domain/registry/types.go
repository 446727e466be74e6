// Package registry builds and validates the in-memory tool catalog from a
// parsed manifest line stream.
package registry

import (
	"fmt"
	"sync"
)

// WarningKind classifies a non-fatal validation finding.
type WarningKind string

const (
	WarnCountMismatch WarningKind = "count-mismatch"
	WarnDuplicatePath WarningKind = "duplicate-path"
)

// Warning records a validation finding that did not abort the build.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Tool is the unit of installation: one manifest entry resolved to a
// repository-relative path.
type Tool struct {
	Name        string `json:"name"`
	Path        string `json:"path"` // repository-relative, "./..." form
	Description string `json:"description"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	SourceURL   string `json:"source_url,omitempty"` // derived raw-content URL

	// Sidecar dependencies are discovered lazily on first install and cached
	// for the lifetime of the owning Registry.
	depOnce sync.Once
	deps    []string
	depErr  error
}

// Dependencies returns the cached sidecar set, resolving it at most once via
// the supplied function. Safe for concurrent callers.
func (t *Tool) Dependencies(resolve func() ([]string, error)) ([]string, error) {
	t.depOnce.Do(func() {
		t.deps, t.depErr = resolve()
	})
	return t.deps, t.depErr
}

// Subcategory is an optional grouping inside a category.
type Subcategory struct {
	Title         string  `json:"title"`
	DeclaredCount int     `json:"declared_count"`
	Tools         []*Tool `json:"tools"`
}

// Category is a named grouping with an optional display icon.
type Category struct {
	Title         string         `json:"title"`
	Icon          string         `json:"icon,omitempty"`
	DeclaredCount int            `json:"declared_count"`
	Subcategories []*Subcategory `json:"subcategories,omitempty"`
	Tools         []*Tool        `json:"tools,omitempty"` // directly-owned tools
}

// ActualCount is the number of retained tools the category transitively owns.
func (c *Category) ActualCount() int {
	n := len(c.Tools)
	for _, sub := range c.Subcategories {
		n += len(sub.Tools)
	}
	return n
}

// Registry is the root catalog aggregate. It is immutable after Build; a
// re-parse produces a fresh Registry that replaces the old one wholesale.
type Registry struct {
	TotalTools int         `json:"total_tools"`
	Categories []*Category `json:"categories"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// Tools returns every retained descriptor in manifest order.
func (r *Registry) Tools() []*Tool {
	var out []*Tool
	for _, cat := range r.Categories {
		out = append(out, cat.Tools...)
		for _, sub := range cat.Subcategories {
			out = append(out, sub.Tools...)
		}
	}
	return out
}

// Find returns the descriptor whose name or path matches exactly, or nil.
func (r *Registry) Find(nameOrPath string) *Tool {
	for _, t := range r.Tools() {
		if t.Name == nameOrPath || t.Path == nameOrPath {
			return t
		}
	}
	return nil
}
