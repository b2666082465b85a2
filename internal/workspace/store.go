package workspace

import (
	"sync"

	"tradescape/internal/model"
)

// ActionKind tags a shape-store mutation.
type ActionKind int

const (
	// ActionRelayout carries a relayout event from the chart. When it
	// includes shape data the shape list is replaced wholesale; either way
	// the view state mapping is updated.
	ActionRelayout ActionKind = iota
	// ActionDeleteAt removes the shape at Index. Out-of-range is a no-op.
	ActionDeleteAt
	// ActionClearAll empties the shape list.
	ActionClearAll
)

// Action is the tagged variant all shape mutations funnel through.
type Action struct {
	Kind      ActionKind
	Shapes    []model.Shape
	HasShapes bool
	ViewState model.GraphViewState
	Index     int
}

// Store owns the in-memory workspace: annotation shapes, view-state
// overrides, notes, and settings. All access is mutex-guarded.
type Store struct {
	mu sync.Mutex
	ws model.Workspace
}

// NewStore creates a store seeded with the given workspace.
func NewStore(ws model.Workspace) *Store {
	return &Store{ws: ws}
}

// Apply runs one shape action against the current workspace.
func (s *Store) Apply(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a.Kind {
	case ActionRelayout:
		if a.HasShapes {
			s.ws.Shapes = append([]model.Shape(nil), a.Shapes...)
		}
		if a.ViewState != nil {
			s.ws.GraphState = a.ViewState
		}
	case ActionDeleteAt:
		if a.Index < 0 || a.Index >= len(s.ws.Shapes) {
			return // stale or absent index: silent no-op
		}
		s.ws.Shapes = append(s.ws.Shapes[:a.Index:a.Index], s.ws.Shapes[a.Index+1:]...)
	case ActionClearAll:
		s.ws.Shapes = []model.Shape{}
	}
}

// ReplaceShapes swaps the shape list wholesale. Indices held by callers
// are invalid after this call.
func (s *Store) ReplaceShapes(shapes []model.Shape) {
	s.Apply(Action{Kind: ActionRelayout, Shapes: shapes, HasShapes: true})
}

// DeleteShape removes the shape at index i, silently ignoring out-of-range.
func (s *Store) DeleteShape(i int) {
	s.Apply(Action{Kind: ActionDeleteAt, Index: i})
}

// ClearShapes empties the shape list.
func (s *Store) ClearShapes() {
	s.Apply(Action{Kind: ActionClearAll})
}

// SetViewState replaces the pan/zoom override mapping.
func (s *Store) SetViewState(state model.GraphViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.GraphState = state
}

// SetNotes replaces the free-text notes.
func (s *Store) SetNotes(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.Notes = text
}

// SetSettings replaces the chart settings.
func (s *Store) SetSettings(settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.Settings = settings
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Clone().Settings
}

// Export returns a deep copy of the whole workspace.
func (s *Store) Export() model.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Clone()
}

// Import replaces every workspace field wholesale. Validation happens at
// decode time; by the time a workspace reaches Import it is applied as-is.
func (s *Store) Import(ws model.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws = ws.Clone()
}
