// Package manifest tokenizes the hive TOOLS.md manifest into typed lines.
//
// The parser is purely lexical: it classifies each line in order and never
// validates counts, uniqueness, or nesting. That is the registry builder's job.
package manifest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// LineKind identifies the classification of a single manifest line.
type LineKind string

const (
	LineCategory     LineKind = "category"
	LineSubcategory  LineKind = "subcategory"
	LineTool         LineKind = "tool"
	LineUnrecognized LineKind = "unrecognized"
)

// Line is one classified manifest line. Fields are populated according to
// Kind: Icon/Title/DeclaredCount for headers, Name/Path/Description for tools.
type Line struct {
	Kind   LineKind
	Number int // 1-based line number in the source text
	Raw    string

	Icon          string
	Title         string
	DeclaredCount int

	Name        string
	Path        string
	Description string
}

// Recognition patterns. Header weight is exact: category headers are "###",
// subcategory headers are "####". The trailing "(N tool)" / "(N tools)" group
// is mandatory for both.
var (
	categoryPattern    = regexp.MustCompile(`^###\s+(.+?)\s+\((\d+)\s+tools?\)\s*$`)
	subcategoryPattern = regexp.MustCompile(`^####\s+(.+?)\s+\((\d+)\s+tools?\)\s*$`)
	toolPattern        = regexp.MustCompile(`^[-*]\s+\[([^\]]+)\]\(([^)]+)\)\s*[-–—:]\s*(\S.*)$`)
)

// Parse classifies every line of the manifest text, preserving order.
// Lines matching no rule come back as LineUnrecognized and are never dropped
// here; a partially malformed manifest still yields its recognizable lines.
func Parse(text string) []Line {
	var lines []Line
	for i, raw := range strings.Split(text, "\n") {
		line := classify(raw)
		line.Number = i + 1
		line.Raw = raw
		lines = append(lines, line)
	}
	return lines
}

func classify(raw string) Line {
	if m := subcategoryPattern.FindStringSubmatch(raw); m != nil {
		count, _ := strconv.Atoi(m[2])
		return Line{Kind: LineSubcategory, Title: strings.TrimSpace(m[1]), DeclaredCount: count}
	}
	if m := categoryPattern.FindStringSubmatch(raw); m != nil {
		count, _ := strconv.Atoi(m[2])
		icon, title := splitIcon(strings.TrimSpace(m[1]))
		return Line{Kind: LineCategory, Icon: icon, Title: title, DeclaredCount: count}
	}
	if m := toolPattern.FindStringSubmatch(raw); m != nil {
		return Line{
			Kind:        LineTool,
			Name:        m[1],
			Path:        m[2],
			Description: strings.TrimSpace(m[3]),
		}
	}
	return Line{Kind: LineUnrecognized}
}

// splitIcon separates an optional leading glyph (emoji or symbol run) from a
// header title. A leading field counts as an icon only when it contains no
// letters or digits, so titles like "File Ops" survive untouched.
func splitIcon(title string) (icon, name string) {
	fields := strings.Fields(title)
	if len(fields) > 1 && !containsAlphanumeric(fields[0]) {
		return fields[0], strings.Join(fields[1:], " ")
	}
	return "", title
}

func containsAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
