package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/treepath"
	"github.com/jward/treepath/internal/store"
	"github.com/jward/treepath/internal/tsbridge"
)

// persistedSession wraps the store-backed session lifecycle shared by the
// marker and find commands.
type persistedSession struct {
	store *store.Store
	id    string
}

// openSession opens (creating if needed) the session database and loads
// the configured session into memory.
func openSession() (*treepath.Session, *persistedSession, error) {
	if dir := filepath.Dir(flagDB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("session db: %w", err)
		}
	}
	st, err := store.Open(flagDB)
	if err != nil {
		return nil, nil, err
	}

	var opts []treepath.SessionOption
	if cfg.MarkerCapacity > 0 {
		opts = append(opts, treepath.WithMarkerCapacity(cfg.MarkerCapacity))
	}
	if cfg.StatementCapacity > 0 {
		opts = append(opts, treepath.WithStatementCapacity(cfg.StatementCapacity))
	}
	session := treepath.NewSession(opts...)
	if err := st.LoadSession(flagSession, session); err != nil {
		st.Close()
		return nil, nil, err
	}
	return session, &persistedSession{store: st, id: flagSession}, nil
}

func (p *persistedSession) save(session *treepath.Session) error {
	return p.store.SaveSession(p.id, session)
}

func (p *persistedSession) close() {
	if err := p.store.Close(); err != nil {
		slog.Warn("closing session db", "error", err)
	}
}

var markCmd = &cobra.Command{
	Use:   "mark <label> <file> <line> <col>",
	Short: "Attach a marker to the node at a source position",
	Args:  cobra.ExactArgs(4),
	RunE:  runMark,
}

func runMark(cmd *cobra.Command, args []string) error {
	label, file := args[0], args[1]
	line, err := strconv.Atoi(args[2])
	if err != nil {
		return outputError(fmt.Errorf("mark: line must be an integer: %w", err))
	}
	col, err := strconv.Atoi(args[3])
	if err != nil {
		return outputError(fmt.Errorf("mark: col must be an integer: %w", err))
	}

	snap, err := tsbridge.ParseFile(cmd.Context(), file)
	if err != nil {
		return outputError(err)
	}
	node := snap.NodeAt(line, col)
	if node == nil {
		return outputError(fmt.Errorf("mark: no node at %s:%d:%d", file, line, col))
	}

	session, persist, err := openSession()
	if err != nil {
		return outputError(err)
	}
	defer persist.close()

	id, err := session.CreateMarker(label)
	if err != nil {
		return outputError(err)
	}
	if err := session.AttachMarker(id, node, file); err != nil {
		return outputError(err)
	}
	if err := persist.save(session); err != nil {
		return outputError(err)
	}

	m := session.FindMarkers(id, "")[0]
	out := CLIMarker{ID: m.ID, Label: m.Label, File: m.File, Path: m.Path}
	return output(out, func(w io.Writer) { formatMarkersText(w, []CLIMarker{out}) })
}

var flagMarkersFile string

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List markers in the current session",
	Args:  cobra.NoArgs,
	RunE:  runMarkers,
}

func init() {
	markersCmd.Flags().StringVar(&flagMarkersFile, "file", "", "only markers attached in this file")
}

func runMarkers(cmd *cobra.Command, args []string) error {
	session, persist, err := openSession()
	if err != nil {
		return outputError(err)
	}
	defer persist.close()

	records := session.FindMarkers("", flagMarkersFile)
	out := make([]CLIMarker, 0, len(records))
	for _, m := range records {
		out = append(out, CLIMarker{ID: m.ID, Label: m.Label, File: m.File, Path: m.Path})
	}
	return output(out, func(w io.Writer) { formatMarkersText(w, out) })
}

var flagUnmarkAll bool

var unmarkCmd = &cobra.Command{
	Use:   "unmark [marker-id]",
	Short: "Remove one marker, or all with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUnmark,
}

func init() {
	unmarkCmd.Flags().BoolVar(&flagUnmarkAll, "all", false, "remove every marker in the session")
}

func runUnmark(cmd *cobra.Command, args []string) error {
	if !flagUnmarkAll && len(args) == 0 {
		return outputError(fmt.Errorf("unmark: marker id or --all required"))
	}

	session, persist, err := openSession()
	if err != nil {
		return outputError(err)
	}
	defer persist.close()

	removed := 0
	if flagUnmarkAll {
		removed = session.ClearMarkers()
	} else if session.RemoveMarker(args[0]) {
		removed = 1
	}
	if err := persist.save(session); err != nil {
		return outputError(err)
	}

	out := map[string]int{"removed": removed}
	return output(out, func(w io.Writer) { fmt.Fprintf(w, "removed %d\n", removed) })
}
