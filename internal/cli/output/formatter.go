package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/fractalic-hive/hivectl/internal/cli/errors"
	"github.com/fractalic-hive/hivectl/internal/domain/registry"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

type Formatter struct {
	format OutputFormat
	color  bool
}

func NewFormatter(format OutputFormat, useColor bool) *Formatter {
	return &Formatter{format: format, color: useColor}
}

func (f *Formatter) JSON() bool { return f.format == FormatJSON }

// ToolRow is one line of the tool listing.
type ToolRow struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

func (f *Formatter) FormatToolTable(rows []ToolRow) {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(data))
		return
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Name", "Category", "Status", "Description"}),
	)
	for _, r := range rows {
		cat := r.Category
		if r.Subcategory != "" {
			cat += " / " + r.Subcategory
		}
		table.Append([]string{r.Name, cat, r.Status, r.Description})
	}
	table.Render()
}

// FormatSummary renders the registry headline: "59 of 61 tools listed,
// 2 warnings". Listed is the retained count; declared is the manifest's sum
// of per-category declarations.
func (f *Formatter) FormatSummary(reg *registry.Registry) string {
	declared := 0
	for _, cat := range reg.Categories {
		declared += cat.DeclaredCount
	}

	line := fmt.Sprintf("%d of %d tools listed", reg.TotalTools, declared)
	switch n := len(reg.Warnings); {
	case n == 1:
		line += ", 1 warning"
	case n > 1:
		line += fmt.Sprintf(", %d warnings", n)
	}
	return line
}

func (f *Formatter) FormatWarnings(warnings []registry.Warning) string {
	var out string
	for _, w := range warnings {
		if f.color {
			out += color.YellowString("warning") + ": " + w.String() + "\n"
		} else {
			out += "warning: " + w.String() + "\n"
		}
	}
	return out
}

func (f *Formatter) FormatError(err errors.ClassifiedError) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(err, "", "  ")
		return string(data)
	}

	var msg string
	if f.color {
		msg = color.RedString("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\n" + color.YellowString("Hint: %s", err.Hint)
		}
	} else {
		msg = fmt.Sprintf("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\nHint: " + err.Hint
		}
	}
	return msg
}
