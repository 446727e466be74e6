// Command validate-manifest validates TOOLS.md manifest files.
//
// Usage:
//
//	validate-manifest [options] [path...]
//
// If no paths are provided, validates TOOLS.md in the current directory.
//
// Options:
//
//	-strict     Treat warnings as errors
//	-json       Output results as JSON
//	-quiet      Only output errors
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fractalic-hive/hivectl/internal/domain/manifest"
	"github.com/fractalic-hive/hivectl/internal/domain/registry"
)

func main() {
	fs := flag.NewFlagSet("validate-manifest", flag.ExitOnError)
	strict := fs.Bool("strict", false, "Treat warnings as errors")
	asJSON := fs.Bool("json", false, "Output results as JSON")
	quiet := fs.Bool("quiet", false, "Only output errors")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(fs.Args(), *strict, *asJSON, *quiet))
}

type result struct {
	Valid    bool               `json:"valid"`
	Error    string             `json:"error,omitempty"`
	Tools    int                `json:"tools"`
	Warnings []registry.Warning `json:"warnings,omitempty"`
}

func run(paths []string, strict, asJSON, quiet bool) int {
	if len(paths) == 0 {
		paths = []string{"TOOLS.md"}
	}

	exitCode := 0
	results := make(map[string]*result)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			exitCode = 1
			continue
		}

		r := &result{}
		reg, err := registry.Build(manifest.Parse(string(data)))
		if err != nil {
			r.Error = err.Error()
			exitCode = 1
		} else {
			r.Valid = true
			r.Tools = reg.TotalTools
			r.Warnings = reg.Warnings
		}
		results[path] = r
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding results: %v\n", err)
			exitCode = 1
		}
	} else {
		outputText(results, quiet)
	}

	if strict {
		for _, r := range results {
			if len(r.Warnings) > 0 {
				exitCode = 1
			}
		}
	}
	return exitCode
}

func outputText(results map[string]*result, quiet bool) {
	for path, r := range results {
		if r.Valid && len(r.Warnings) == 0 && quiet {
			continue
		}

		if r.Valid {
			if !quiet {
				fmt.Printf("✓ %s (%d tools)\n", path, r.Tools)
			}
		} else {
			fmt.Printf("✗ %s\n", path)
			fmt.Printf("  ERROR: %s\n", r.Error)
		}

		for _, w := range r.Warnings {
			fmt.Printf("  WARN:  %s\n", w)
		}
	}
}
