package tileattr

import (
	"sort"

	"github.com/fdeitylink/kerotools/pkg/formats"
)

// Handle is the observable view of one tileset's attribute grid.
// The grid behind a handle can be replaced when a sharing tileset is split
// from the default, so callers should re-read Grid rather than keep the pointer.
type Handle struct {
	m *Manager

	name      string
	ownPath   string
	ownership Ownership
	grid      *formats.AttributeGrid

	observers map[int]func(*formats.AttributeGrid)
	nextID    int
}

// Name returns the tileset name.
func (h *Handle) Name() string { return h.name }

// Grid returns the grid currently bound to the tileset. It must be treated
// as read-only; edits go through Manager.SetCell.
func (h *Handle) Grid() *formats.AttributeGrid {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.grid
}

// Attribute returns the value at (x, y), or false if out of bounds.
func (h *Handle) Attribute(x, y int) (uint8, bool) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.grid.At(x, y)
}

// Ownership reports whether the tileset owns its grid or shares the default.
func (h *Handle) Ownership() Ownership {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.ownership
}

// Path returns the file the grid's contents are written to: the default
// file while the tileset shares the default, its own file otherwise.
func (h *Handle) Path() string {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.pathLocked()
}

func (h *Handle) pathLocked() string {
	if h.ownership == SharedDefault && h.m.def.path != "" {
		return h.m.def.path
	}
	return h.ownPath
}

// Subscribe registers fn to be called with the bound grid after every
// change, including a split from the default and, while the tileset shares
// the default, edits made to mpt00. The returned func removes it.
func (h *Handle) Subscribe(fn func(*formats.AttributeGrid)) (cancel func()) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()

	if h.observers == nil {
		h.observers = make(map[int]func(*formats.AttributeGrid))
	}
	id := h.nextID
	h.nextID++
	h.observers[id] = fn

	return func() {
		h.m.mu.Lock()
		defer h.m.mu.Unlock()
		delete(h.observers, id)
	}
}

func (h *Handle) observersLocked() []func(*formats.AttributeGrid) {
	ids := make([]int, 0, len(h.observers))
	for id := range h.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids) // subscription order

	fns := make([]func(*formats.AttributeGrid), len(ids))
	for i, id := range ids {
		fns[i] = h.observers[id]
	}
	return fns
}
