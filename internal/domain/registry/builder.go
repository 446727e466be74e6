package registry

import (
	"errors"
	"fmt"

	"github.com/fractalic-hive/hivectl/internal/domain/manifest"
)

// ErrMalformedManifest is returned when the line stream violates the
// structural rules (currently: a tool entry before any category header).
// A failed build leaves any previously active registry untouched.
var ErrMalformedManifest = errors.New("malformed manifest")

// Build consumes a parsed line stream and assembles the Registry.
//
// The builder keeps two slots while scanning: the currently open category and
// the currently open subcategory. A tool line attaches to the innermost open
// container. Count mismatches and duplicate paths are recorded as warnings on
// the Registry rather than failing the build; the first occurrence of a
// duplicated path wins and later ones are dropped.
func Build(lines []manifest.Line) (*Registry, error) {
	reg := &Registry{}
	seen := make(map[string]int) // path -> source line of first occurrence

	var curCat *Category
	var curSub *Subcategory

	for _, line := range lines {
		switch line.Kind {
		case manifest.LineCategory:
			curCat = &Category{
				Title:         line.Title,
				Icon:          line.Icon,
				DeclaredCount: line.DeclaredCount,
			}
			curSub = nil
			reg.Categories = append(reg.Categories, curCat)

		case manifest.LineSubcategory:
			if curCat == nil {
				// A subcategory with no owning category cannot hold tools;
				// treat it like an unrecognized line.
				continue
			}
			curSub = &Subcategory{
				Title:         line.Title,
				DeclaredCount: line.DeclaredCount,
			}
			curCat.Subcategories = append(curCat.Subcategories, curSub)

		case manifest.LineTool:
			if curCat == nil {
				return nil, fmt.Errorf("%w: tool entry %q on line %d precedes any category header",
					ErrMalformedManifest, line.Name, line.Number)
			}
			if first, dup := seen[line.Path]; dup {
				reg.Warnings = append(reg.Warnings, Warning{
					Kind: WarnDuplicatePath,
					Message: fmt.Sprintf("path %s on line %d duplicates line %d; entry %q dropped",
						line.Path, line.Number, first, line.Name),
				})
				continue
			}
			seen[line.Path] = line.Number

			tool := &Tool{
				Name:        line.Name,
				Path:        line.Path,
				Description: line.Description,
				Category:    curCat.Title,
			}
			if curSub != nil {
				tool.Subcategory = curSub.Title
				curSub.Tools = append(curSub.Tools, tool)
			} else {
				curCat.Tools = append(curCat.Tools, tool)
			}
		}
	}

	validateCounts(reg)
	reg.TotalTools = len(reg.Tools())
	return reg, nil
}

// validateCounts compares each container's declared tool count against what
// it actually retained. Mismatches are warnings: the manifest is hand-written
// prose and drifts.
func validateCounts(reg *Registry) {
	for _, cat := range reg.Categories {
		for _, sub := range cat.Subcategories {
			if sub.DeclaredCount != len(sub.Tools) {
				reg.Warnings = append(reg.Warnings, Warning{
					Kind: WarnCountMismatch,
					Message: fmt.Sprintf("subcategory %q declares %d tools but has %d",
						sub.Title, sub.DeclaredCount, len(sub.Tools)),
				})
			}
		}
		if cat.DeclaredCount != cat.ActualCount() {
			reg.Warnings = append(reg.Warnings, Warning{
				Kind: WarnCountMismatch,
				Message: fmt.Sprintf("category %q declares %d tools but has %d",
					cat.Title, cat.DeclaredCount, cat.ActualCount()),
			})
		}
	}
}
