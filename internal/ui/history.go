package ui

import "github.com/piwi3910/gapfinder/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the layout and settings at a point in time. Results are
// not stored; they are recomputed after a restore.
type Snapshot struct {
	Layout   model.Layout
	Settings model.Settings
	Label    string // Human-readable description (e.g. "Add Obstacle")
}

// History manages undo/redo stacks of project snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{
		maxDepth: defaultMaxDepth,
	}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// This should be called before the modification is applied.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot from the undo stack and pushes
// the current state onto the redo stack. Returns the snapshot to restore
// and true, or an empty snapshot and false if nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo pops the most recent snapshot from the redo stack and pushes
// the current state onto the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// copyObstacles returns a copy of an obstacle slice. Obstacles hold no
// references, so a shallow element copy is deep.
func copyObstacles(obstacles []model.Obstacle) []model.Obstacle {
	if obstacles == nil {
		return nil
	}
	cp := make([]model.Obstacle, len(obstacles))
	copy(cp, obstacles)
	return cp
}

// MakeSnapshot creates a snapshot from the current project state with a label.
func MakeSnapshot(layout model.Layout, settings model.Settings, label string) Snapshot {
	return Snapshot{
		Layout: model.Layout{
			Outer:     layout.Outer,
			Obstacles: copyObstacles(layout.Obstacles),
		},
		Settings: settings,
		Label:    label,
	}
}
