// Package script embeds a Risor VM and exposes the path-query engine to
// automation scripts: load files, run path expressions, take stable
// addresses, and manage session markers from script code.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/treepath"
	"github.com/jward/treepath/internal/tsbridge"
)

// Runtime holds the loaded snapshots and the session shared by all host
// functions for one script run.
type Runtime struct {
	mu      sync.Mutex
	snaps   map[string]*tsbridge.Snapshot
	session *treepath.Session
	exprs   *treepath.Cache
}

// NewRuntime creates a Runtime over an existing session. A nil session
// gets a fresh one.
func NewRuntime(session *treepath.Session) (*Runtime, error) {
	if session == nil {
		session = treepath.NewSession()
	}
	exprs, err := treepath.NewCache(256)
	if err != nil {
		return nil, fmt.Errorf("script runtime: %w", err)
	}
	return &Runtime{
		snaps:   make(map[string]*tsbridge.Snapshot),
		session: session,
		exprs:   exprs,
	}, nil
}

// Close releases the Runtime's resources.
func (r *Runtime) Close() {
	r.exprs.Close()
}

// Session returns the session shared with script host functions.
func (r *Runtime) Session() *treepath.Session { return r.session }

// LoadFile parses one source file into the Runtime's snapshot set so
// scripts can query it by path.
func (r *Runtime) LoadFile(ctx context.Context, path string) error {
	snap, err := tsbridge.ParseFile(ctx, path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snaps[path] = snap
	r.mu.Unlock()
	slog.Debug("script runtime loaded file", "file", path, "language", snap.Language)
	return nil
}

// RunScript loads and executes a Risor script file.
func (r *Runtime) RunScript(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return r.eval(ctx, string(src), path)
}

// RunSource executes Risor source directly. Useful for testing without
// script files.
func (r *Runtime) RunSource(ctx context.Context, source string) error {
	return r.eval(ctx, source, "<inline>")
}

func (r *Runtime) eval(ctx context.Context, source, label string) error {
	opts := []risor.Option{
		risor.WithGlobal("load", r.makeLoadFn()),
		risor.WithGlobal("find", r.makeFindFn()),
		risor.WithGlobal("stable_path", r.makeStablePathFn()),
		risor.WithGlobal("nesting_depth", r.makeNestingDepthFn()),
		risor.WithGlobal("mark", r.makeMarkFn()),
		risor.WithGlobal("markers", r.makeMarkersFn()),
	}
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("script %s: %w", label, err)
	}
	return nil
}

func (r *Runtime) snapshot(file string) (*tsbridge.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snaps[file]
	return snap, ok
}

// makeLoadFn creates "load".
//
// load(path) → path
func (r *Runtime) makeLoadFn() *object.Builtin {
	return object.NewBuiltin("load", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("load", 1, len(args))
		}
		path, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("load: path must be a string, got %s", args[0].Type())
		}
		if err := r.LoadFile(ctx, path.Value()); err != nil {
			return object.Errorf("load: %v", err)
		}
		return path
	})
}

// makeFindFn creates "find".
//
// find(expr, file) → []map with kind, name, file, line, col, path and a
// registered statement id per match.
func (r *Runtime) makeFindFn() *object.Builtin {
	return object.NewBuiltin("find", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("find", 2, len(args))
		}
		exprStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("find: expr must be a string, got %s", args[0].Type())
		}
		fileStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("find: file must be a string, got %s", args[1].Type())
		}

		snap, ok := r.snapshot(fileStr.Value())
		if !ok {
			return object.Errorf("find: file %q not loaded", fileStr.Value())
		}
		expr, err := r.exprs.Get(exprStr.Value())
		if err != nil {
			return object.Errorf("find: %v", err)
		}

		nodes := treepath.NewEvaluator().Eval(expr, snap.Root)
		results := make([]object.Object, 0, len(nodes))
		for _, n := range nodes {
			id := r.session.RegisterStatement(n, snap.File)
			results = append(results, object.NewMap(map[string]object.Object{
				"id":   object.NewString(id),
				"kind": object.NewString(n.Kind()),
				"name": object.NewString(n.Name()),
				"file": object.NewString(snap.File),
				"line": object.NewInt(int64(n.Span().Start.Line)),
				"col":  object.NewInt(int64(n.Span().Start.Column)),
				"path": object.NewString(treepath.StablePath(n, nil)),
			}))
		}
		return object.NewList(results)
	})
}

// makeStablePathFn creates "stable_path".
//
// stable_path(file, line, col) → string
func (r *Runtime) makeStablePathFn() *object.Builtin {
	return object.NewBuiltin("stable_path", func(ctx context.Context, args ...object.Object) object.Object {
		node, errObj := r.nodeAtArgs("stable_path", args)
		if errObj != nil {
			return errObj
		}
		return object.NewString(treepath.StablePath(node, nil))
	})
}

// makeNestingDepthFn creates "nesting_depth".
//
// nesting_depth(file, line, col) → int
func (r *Runtime) makeNestingDepthFn() *object.Builtin {
	return object.NewBuiltin("nesting_depth", func(ctx context.Context, args ...object.Object) object.Object {
		node, errObj := r.nodeAtArgs("nesting_depth", args)
		if errObj != nil {
			return errObj
		}
		return object.NewInt(int64(treepath.NestingDepth(node, nil)))
	})
}

// makeMarkFn creates "mark".
//
// mark(label, file, line, col) → marker id
func (r *Runtime) makeMarkFn() *object.Builtin {
	return object.NewBuiltin("mark", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 4 {
			return object.NewArgsError("mark", 4, len(args))
		}
		label, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("mark: label must be a string, got %s", args[0].Type())
		}
		node, errObj := r.nodeAtArgs("mark", args[1:])
		if errObj != nil {
			return errObj
		}
		file := args[1].(*object.String).Value()

		id, err := r.session.CreateMarker(label.Value())
		if err != nil {
			return object.Errorf("mark: %v", err)
		}
		if err := r.session.AttachMarker(id, node, file); err != nil {
			return object.Errorf("mark: %v", err)
		}
		return object.NewString(id)
	})
}

// makeMarkersFn creates "markers".
//
// markers() → []map with id, label, file, path
func (r *Runtime) makeMarkersFn() *object.Builtin {
	return object.NewBuiltin("markers", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("markers", 0, len(args))
		}
		records := r.session.FindMarkers("", "")
		results := make([]object.Object, 0, len(records))
		for _, m := range records {
			results = append(results, object.NewMap(map[string]object.Object{
				"id":    object.NewString(m.ID),
				"label": object.NewString(m.Label),
				"file":  object.NewString(m.File),
				"path":  object.NewString(m.Path),
			}))
		}
		return object.NewList(results)
	})
}

// nodeAtArgs resolves the common (file, line, col) argument triple to the
// innermost node, or an error object.
func (r *Runtime) nodeAtArgs(fn string, args []object.Object) (treepath.Node, object.Object) {
	if len(args) != 3 {
		return nil, object.NewArgsError(fn, 3, len(args))
	}
	file, ok := args[0].(*object.String)
	if !ok {
		return nil, object.Errorf("%s: file must be a string, got %s", fn, args[0].Type())
	}
	line, ok := args[1].(*object.Int)
	if !ok {
		return nil, object.Errorf("%s: line must be an int, got %s", fn, args[1].Type())
	}
	col, ok := args[2].(*object.Int)
	if !ok {
		return nil, object.Errorf("%s: col must be an int, got %s", fn, args[2].Type())
	}

	snap, ok := r.snapshot(file.Value())
	if !ok {
		return nil, object.Errorf("%s: file %q not loaded", fn, file.Value())
	}
	node := snap.NodeAt(int(line.Value()), int(col.Value()))
	if node == nil {
		return nil, object.Errorf("%s: no node at %s:%d:%d", fn, file.Value(), line.Value(), col.Value())
	}
	return node, nil
}
