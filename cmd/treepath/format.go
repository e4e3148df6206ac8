package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// CLIMatch is one query result row.
type CLIMatch struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
	Path string `json:"path"`
}

// CLILocation is the locate command's output.
type CLILocation struct {
	File         string `json:"file"`
	Kind         string `json:"kind"`
	Name         string `json:"name,omitempty"`
	Path         string `json:"path"`
	NestingDepth int    `json:"nestingDepth"`
}

// CLIMarker is one marker row.
type CLIMarker struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	File  string `json:"file,omitempty"`
	Path  string `json:"path,omitempty"`
}

// output marshals v as JSON or dispatches to the text formatter.
func output(v any, text func(io.Writer)) error {
	if flagFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(os.Stdout)
	return nil
}

// outputError prints an error in the selected format and marks it handled.
func outputError(err error) error {
	errorHandled = true
	if flagFormat == "json" {
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(map[string]string{"error": err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	return err
}

func formatMatchesText(w io.Writer, matches []CLIMatch) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME\tFILE\tLINE\tPATH")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			m.ID, m.Kind, m.Name, m.File, m.Line, m.Path)
	}
	tw.Flush()
}

func formatLocationText(w io.Writer, loc CLILocation) {
	fmt.Fprintf(w, "%s\t%s\t%s\tdepth=%d\n", loc.File, loc.Kind, loc.Path, loc.NestingDepth)
}

func formatMarkersText(w io.Writer, markers []CLIMarker) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tFILE\tPATH")
	for _, m := range markers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Label, m.File, m.Path)
	}
	tw.Flush()
}
