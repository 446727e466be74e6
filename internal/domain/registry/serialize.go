package registry

import (
	"fmt"
	"strings"
)

// Manifest re-serializes the registry back into manifest form. Counts are the
// declared ones so a clean parse → serialize → parse cycle is stable; cosmetic
// whitespace is normalized.
func (r *Registry) Manifest() string {
	var sb strings.Builder
	for _, cat := range r.Categories {
		title := cat.Title
		if cat.Icon != "" {
			title = cat.Icon + " " + title
		}
		fmt.Fprintf(&sb, "### %s (%d %s)\n\n", title, cat.DeclaredCount, plural(cat.DeclaredCount))
		writeTools(&sb, cat.Tools)
		for _, sub := range cat.Subcategories {
			fmt.Fprintf(&sb, "#### %s (%d %s)\n\n", sub.Title, sub.DeclaredCount, plural(sub.DeclaredCount))
			writeTools(&sb, sub.Tools)
		}
	}
	return sb.String()
}

func writeTools(sb *strings.Builder, tools []*Tool) {
	for _, t := range tools {
		fmt.Fprintf(sb, "- [%s](%s) - %s\n", t.Name, t.Path, t.Description)
	}
	if len(tools) > 0 {
		sb.WriteString("\n")
	}
}

func plural(n int) string {
	if n == 1 {
		return "tool"
	}
	return "tools"
}
