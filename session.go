package treepath

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMarkerCapacity bounds the number of active markers per session.
const DefaultMarkerCapacity = 100

// DefaultStatementCapacity bounds the statement registry; the least
// recently used record is evicted when the bound is exceeded.
const DefaultStatementCapacity = 1000

// ErrMarkerCapacity is returned by CreateMarker when the marker store is
// full. Existing markers remain retrievable; the caller must remove some
// before creating more.
var ErrMarkerCapacity = errors.New("treepath: marker capacity exceeded")

// Marker is an ephemeral, explicitly removable tag attached to a node.
// Attached nodes are recorded as (file, stable path) pairs so a marker can
// be re-resolved against a fresh snapshot after isolated edits.
type Marker struct {
	ID        string
	Label     string
	CreatedAt time.Time
	File      string
	Path      string

	node Node
}

// Node returns the marker's attached node within the snapshot it was
// attached under, or nil when the marker is unattached (for example after
// restoring a persisted session).
func (m Marker) Node() Node { return m.node }

// Statement is a registered query result that can be re-addressed later by
// id.
type Statement struct {
	ID   string
	File string
	Path string

	node Node
}

// Node returns the statement's node within its original snapshot, or nil
// after a restore.
func (s Statement) Node() Node { return s.node }

// Session holds the mutable per-session state: the marker store and the
// statement registry. All mutation is serialized through one mutex so
// overlapping host requests and background cleanup never race. Sessions
// are independent; there is no process-global registry.
type Session struct {
	mu        sync.Mutex
	markerCap int
	stmtCap   int

	markers     map[string]*Marker
	markerOrder []string // creation order, for deterministic listing

	stmts    map[string]*list.Element // id → element in stmtLRU
	stmtLRU  *list.List               // front = most recently used *Statement
	stmtNext int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMarkerCapacity overrides the marker capacity.
func WithMarkerCapacity(n int) SessionOption {
	return func(s *Session) {
		s.markerCap = n
	}
}

// WithStatementCapacity overrides the statement registry bound.
func WithStatementCapacity(n int) SessionOption {
	return func(s *Session) {
		s.stmtCap = n
	}
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		markerCap: DefaultMarkerCapacity,
		stmtCap:   DefaultStatementCapacity,
		markers:   make(map[string]*Marker),
		stmts:     make(map[string]*list.Element),
		stmtLRU:   list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMarker allocates a new marker with an optional label and returns
// its id. It fails with ErrMarkerCapacity when the store is full; nothing
// is ever evicted silently.
func (s *Session) CreateMarker(label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.markers) >= s.markerCap {
		return "", fmt.Errorf("create marker: %w", ErrMarkerCapacity)
	}
	id := uuid.NewString()
	s.markers[id] = &Marker{ID: id, Label: label, CreatedAt: time.Now()}
	s.markerOrder = append(s.markerOrder, id)
	return id, nil
}

// AttachMarker attaches a marker to a node in the given file, recording
// the node's stable path for later re-resolution.
func (s *Session) AttachMarker(id string, node Node, file string) error {
	path := StablePath(node, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return fmt.Errorf("attach marker: unknown marker %q", id)
	}
	m.node = node
	m.File = file
	m.Path = path
	return nil
}

// FindMarkers returns markers filtered by id and/or file; empty arguments
// are unfiltered. Results are copies in creation order.
func (s *Session) FindMarkers(id, file string) []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Marker
	for _, mid := range s.markerOrder {
		m, ok := s.markers[mid]
		if !ok {
			continue
		}
		if id != "" && m.ID != id {
			continue
		}
		if file != "" && m.File != file {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// RemoveMarker removes one marker, reporting whether it existed.
func (s *Session) RemoveMarker(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return false
	}
	delete(s.markers, id)
	for i, mid := range s.markerOrder {
		if mid == id {
			s.markerOrder = append(s.markerOrder[:i], s.markerOrder[i+1:]...)
			break
		}
	}
	return true
}

// ClearMarkers removes all markers and returns how many were removed.
func (s *Session) ClearMarkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.markers)
	s.markers = make(map[string]*Marker)
	s.markerOrder = nil
	return n
}

// RegisterStatement records a query result for later re-addressing and
// returns its id ("stmt-N"). Registration is additive up to the session's
// statement capacity, beyond which the least recently used record is
// evicted.
func (s *Session) RegisterStatement(node Node, file string) string {
	path := StablePath(node, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stmtNext++
	st := &Statement{
		ID:   fmt.Sprintf("stmt-%d", s.stmtNext),
		File: file,
		Path: path,
		node: node,
	}
	s.stmts[st.ID] = s.stmtLRU.PushFront(st)
	for s.stmtLRU.Len() > s.stmtCap {
		oldest := s.stmtLRU.Back()
		s.stmtLRU.Remove(oldest)
		delete(s.stmts, oldest.Value.(*Statement).ID)
	}
	return st.ID
}

// LookupStatement returns a registered statement by id and refreshes its
// recency.
func (s *Session) LookupStatement(id string) (Statement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.stmts[id]
	if !ok {
		return Statement{}, false
	}
	s.stmtLRU.MoveToFront(el)
	return *el.Value.(*Statement), true
}

// ResolveStatement re-resolves a registered statement against a fresh
// snapshot by walking its recorded stable path. It returns false when the
// id is unknown or the address no longer names a node.
func (s *Session) ResolveStatement(id string, root Node) (Node, bool) {
	st, ok := s.LookupStatement(id)
	if !ok {
		return nil, false
	}
	return ResolvePath(root, st.Path)
}

// ClearStatements empties the statement registry.
func (s *Session) ClearStatements() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stmts = make(map[string]*list.Element)
	s.stmtLRU.Init()
}

// Export snapshots the session's markers and statements for persistence.
func (s *Session) Export() ([]Marker, []Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	markers := make([]Marker, 0, len(s.markers))
	for _, id := range s.markerOrder {
		if m, ok := s.markers[id]; ok {
			markers = append(markers, *m)
		}
	}
	stmts := make([]Statement, 0, s.stmtLRU.Len())
	for el := s.stmtLRU.Back(); el != nil; el = el.Prev() {
		stmts = append(stmts, *el.Value.(*Statement))
	}
	return markers, stmts
}

// Restore loads previously exported markers and statements into an empty
// session. Marker capacity still applies; node references are left nil and
// must be re-resolved via ResolveStatement or ResolvePath.
func (s *Session) Restore(markers []Marker, stmts []Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.markers)+len(markers) > s.markerCap {
		return fmt.Errorf("restore: %w", ErrMarkerCapacity)
	}
	for i := range markers {
		m := markers[i]
		m.node = nil
		s.markers[m.ID] = &m
		s.markerOrder = append(s.markerOrder, m.ID)
	}
	for i := range stmts {
		st := stmts[i]
		st.node = nil
		s.stmts[st.ID] = s.stmtLRU.PushFront(&st)
		if n := stmtNumber(st.ID); n > s.stmtNext {
			s.stmtNext = n
		}
	}
	return nil
}

// stmtNumber extracts N from "stmt-N", or 0.
func stmtNumber(id string) int {
	var n int
	if _, err := fmt.Sscanf(id, "stmt-%d", &n); err != nil {
		return 0
	}
	return n
}
