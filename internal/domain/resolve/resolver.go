// Package resolve maps registry descriptors to fetchable locations and
// discovers sidecar dependencies colocated with a tool.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPath is returned when a descriptor's repository-relative path
// cannot be resolved to a raw-content URL. Resolution happens before any
// network call, so a bad path never costs a fetch.
var ErrInvalidPath = errors.New("invalid tool path")

// Source identifies the repository the marketplace is served from.
type Source struct {
	Owner  string
	Repo   string
	Branch string
}

// RawBase returns the raw-content address prefix for the source.
func (s Source) RawBase() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", s.Owner, s.Repo, s.Branch)
}

// ManifestURL returns the fetch location of the manifest document.
func (s Source) ManifestURL(manifestPath string) string {
	return s.RawBase() + "/" + strings.TrimPrefix(manifestPath, "./")
}

// ContentsURL returns the GitHub contents-API listing URL for a repo directory.
func (s Source) ContentsURL(dir string) string {
	dir = strings.Trim(dir, "/")
	return fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/%s?ref=%s", s.Owner, s.Repo, dir, s.Branch)
}

// ToolURL converts a descriptor's repository-relative path into an absolute
// raw-content URL. The path must begin with "./", contain no parent-directory
// segments, and end in ".py". Pure and idempotent: same inputs, same string.
func ToolURL(src Source, relPath string) (string, error) {
	url, err := FileURL(src, relPath)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(relPath, ".py") {
		return "", fmt.Errorf("%w: %q does not reference a .py file", ErrInvalidPath, relPath)
	}
	return url, nil
}

// FileURL resolves any repository-relative file path (sidecars included, so
// no extension requirement) under the same safety rules as ToolURL.
func FileURL(src Source, relPath string) (string, error) {
	if !strings.HasPrefix(relPath, "./") {
		return "", fmt.Errorf("%w: %q does not begin with ./", ErrInvalidPath, relPath)
	}
	trimmed := strings.TrimPrefix(relPath, "./")
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q contains parent-directory traversal", ErrInvalidPath, relPath)
		}
		if seg == "" {
			return "", fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, relPath)
		}
	}
	return src.RawBase() + "/" + trimmed, nil
}

var lower = cases.Lower(language.Und)

// Segment converts a category or subcategory title into a filesystem
// directory segment: NFC-normalized, lower-cased, non-alphanumeric runs
// collapsed to a single hyphen.
func Segment(title string) string {
	s := lower.String(norm.NFC.String(title))
	var sb strings.Builder
	pendingHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return sb.String()
}
