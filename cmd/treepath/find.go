package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/treepath"
	"github.com/jward/treepath/internal/tsbridge"
)

var flagRegister bool

var findCmd = &cobra.Command{
	Use:   "find <path-expr> <file>...",
	Short: "Evaluate a path expression against source files",
	Long:  "Parses each file with tree-sitter and evaluates the path expression against its syntax tree, printing one row per match with a stable address.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().BoolVar(&flagRegister, "register", false, "register matches as statement records in the session database")
}

func runFind(cmd *cobra.Command, args []string) error {
	pathExpr := args[0]
	files := args[1:]

	var parseOpts []treepath.ParseOption
	if cfg.Strict {
		parseOpts = append(parseOpts, treepath.WithStrictAttributes())
	}
	expr, err := treepath.Parse(pathExpr, parseOpts...)
	if err != nil {
		return outputError(err)
	}

	session, persist, err := openSession()
	if err != nil {
		return outputError(err)
	}
	defer persist.close()

	ev := treepath.NewEvaluator()
	var matches []CLIMatch
	for _, file := range files {
		snap, err := tsbridge.ParseFile(cmd.Context(), file)
		if err != nil {
			return outputError(err)
		}
		for _, n := range ev.Eval(expr, snap.Root) {
			m := CLIMatch{
				Kind: n.Kind(),
				Name: n.Name(),
				File: file,
				Line: n.Span().Start.Line,
				Col:  n.Span().Start.Column,
				Path: treepath.StablePath(n, nil),
			}
			if flagRegister {
				m.ID = session.RegisterStatement(n, file)
			}
			matches = append(matches, m)
		}
	}

	if flagRegister {
		if err := persist.save(session); err != nil {
			return outputError(err)
		}
	}
	if matches == nil {
		matches = []CLIMatch{}
	}
	return output(matches, func(w io.Writer) { formatMatchesText(w, matches) })
}

var locateCmd = &cobra.Command{
	Use:   "locate <file> <line> <col>",
	Short: "Stable address of the node at a source position",
	Args:  cobra.ExactArgs(3),
	RunE:  runLocate,
}

func runLocate(cmd *cobra.Command, args []string) error {
	file := args[0]
	line, err := strconv.Atoi(args[1])
	if err != nil {
		return outputError(fmt.Errorf("locate: line must be an integer: %w", err))
	}
	col, err := strconv.Atoi(args[2])
	if err != nil {
		return outputError(fmt.Errorf("locate: col must be an integer: %w", err))
	}

	snap, err := tsbridge.ParseFile(cmd.Context(), file)
	if err != nil {
		return outputError(err)
	}
	node := snap.NodeAt(line, col)
	if node == nil {
		return outputError(fmt.Errorf("locate: no node at %s:%d:%d", file, line, col))
	}

	loc := CLILocation{
		File:         file,
		Kind:         node.Kind(),
		Name:         node.Name(),
		Path:         treepath.StablePath(node, nil),
		NestingDepth: treepath.NestingDepth(node, nil),
	}
	return output(loc, func(w io.Writer) { formatLocationText(w, loc) })
}
