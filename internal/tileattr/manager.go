// Package tileattr resolves tilesets to their attribute grids.
//
// Each tileset either owns a grid loaded from <img>/<name>.pxattr or shares
// the mod's default grid (mpt00) when it has no file of its own. The first
// SetCell on a sharing tileset copies the default into a grid the tileset
// owns, so edits never leak into the default or into other tilesets.
// Every SetCell writes the grid straight back to disk.
package tileattr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fdeitylink/kerotools/internal/logger"
	"github.com/fdeitylink/kerotools/pkg/formats"
)

// DefaultTileset names the attribute grid used by tilesets without their own file.
const DefaultTileset = "mpt00"

// ErrDefaultMissing is returned when a tileset needs the default grid and
// the mod has no mpt00.pxattr. The mod is unusable for attribute editing
// until the file is restored.
var ErrDefaultMissing = errors.New("missing default attribute file " + DefaultTileset + formats.PxAttrExtension)

// Session is the part of a loaded mod the manager depends on.
type Session interface {
	Active() bool
	ImageDir() string
}

// Ownership tells whether a handle's grid belongs to its tileset or is the shared default.
type Ownership int

const (
	Owned Ownership = iota
	SharedDefault
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case SharedDefault:
		return "shared-default"
	default:
		return fmt.Sprintf("Ownership(%d)", int(o))
	}
}

type defaultState int

const (
	defaultUninitialized defaultState = iota
	defaultEmpty                      // mpt00.pxattr exists but holds no tiles
	defaultLoaded
)

// defaultGrid is the session's mpt00 grid, loaded on first need.
type defaultGrid struct {
	state defaultState
	grid  *formats.AttributeGrid
	path  string
}

func (d *defaultGrid) loaded() bool { return d.state != defaultUninitialized }

// Manager caches attribute grids for the tilesets of one mod session.
// It is safe for concurrent use, though edits are expected from a single goroutine.
type Manager struct {
	session Session

	mu      sync.Mutex
	entries map[string]*Handle
	def     defaultGrid
}

// NewManager returns a manager bound to session.
func NewManager(session Session) *Manager {
	return &Manager{
		session: session,
		entries: make(map[string]*Handle),
	}
}

func (m *Manager) checkActive(op string) {
	if !m.session.Active() {
		panic("tileattr: " + op + " called without a loaded mod")
	}
}

// Path returns the attribute file path for tileset name.
func (m *Manager) Path(name string) string {
	m.checkActive("Path")
	return filepath.Join(m.session.ImageDir(), name+formats.PxAttrExtension)
}

// GetGrid returns the handle for tileset name, loading or falling back to
// the default grid on first request. Repeated calls return the same handle.
// A failed load leaves the cache unchanged.
func (m *Manager) GetGrid(name string) (*Handle, error) {
	m.checkActive("GetGrid")

	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.entries[name]; ok {
		return h, nil
	}

	path := m.Path(name)

	if name != DefaultTileset {
		exists, err := fileExists(path)
		if err != nil {
			logger.Error("checking attribute file", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		if exists {
			grid, err := formats.ReadPxAttrFile(path)
			if err != nil {
				logger.Error("loading attribute file", zap.String("tileset", name), zap.Error(err))
				return nil, err
			}
			h := m.newHandle(name, path, Owned, grid)
			logger.Debug("attribute grid loaded",
				zap.String("tileset", name),
				zap.Uint16("width", grid.Width),
				zap.Uint16("height", grid.Height))
			return h, nil
		}
	}

	if err := m.loadDefault(); err != nil {
		return nil, err
	}

	h := m.newHandle(name, path, SharedDefault, m.def.grid)
	if name != DefaultTileset {
		logger.Debug("attribute grid falls back to default", zap.String("tileset", name))
	}
	return h, nil
}

func (m *Manager) newHandle(name, path string, ownership Ownership, grid *formats.AttributeGrid) *Handle {
	h := &Handle{
		m:         m,
		name:      name,
		ownPath:   path,
		ownership: ownership,
		grid:      grid,
	}
	m.entries[name] = h
	return h
}

// loadDefault reads mpt00.pxattr once per session. Called with m.mu held.
func (m *Manager) loadDefault() error {
	if m.def.loaded() {
		return nil
	}

	path := filepath.Join(m.session.ImageDir(), DefaultTileset+formats.PxAttrExtension)
	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		logger.Error("default attribute file missing", zap.String("path", path))
		return fmt.Errorf("%w: %s", ErrDefaultMissing, path)
	}

	grid, err := formats.ReadPxAttrFile(path)
	if err != nil {
		logger.Error("loading default attribute file", zap.String("path", path), zap.Error(err))
		return err
	}

	state := defaultLoaded
	if grid.Empty() {
		state = defaultEmpty
	}
	m.def = defaultGrid{state: state, grid: grid, path: path}

	logger.Debug("default attribute grid loaded",
		zap.String("path", path),
		zap.Uint16("width", grid.Width),
		zap.Uint16("height", grid.Height))
	return nil
}

// SetCell stores value at (x, y) of tileset name's grid and writes the grid to disk.
//
// GetGrid must have been called for name in this session, and (x, y) must
// lie within the grid; violating either panics. A tileset sharing the
// default grid is first given its own copy. Editing mpt00 itself changes
// the grid every sharing tileset is bound to, so their observers are
// notified as well. If the write fails the change stays in memory,
// observers are still notified, and the error is returned.
func (m *Manager) SetCell(name string, x, y int, value uint8) error {
	m.checkActive("SetCell")

	m.mu.Lock()
	h, ok := m.entries[name]
	if !ok {
		m.mu.Unlock()
		panic(fmt.Sprintf("tileattr: SetCell on tileset %q before GetGrid", name))
	}
	if !h.grid.InBounds(x, y) {
		w, ht := h.grid.Width, h.grid.Height
		m.mu.Unlock()
		panic(fmt.Sprintf("tileattr: cell (%d, %d) out of range for %q (%dx%d)", x, y, name, w, ht))
	}

	if h.ownership == SharedDefault && name != DefaultTileset {
		h.grid = h.grid.Clone()
		h.ownership = Owned
		logger.Info("tileset split from default attributes", zap.String("tileset", name))
	}

	h.grid.Set(x, y, value)
	path := h.pathLocked()
	err := formats.WritePxAttrFile(path, h.grid)

	grid := h.grid
	observers := h.observersLocked()
	if name == DefaultTileset {
		observers = append(observers, m.sharingObserversLocked()...)
	}
	m.mu.Unlock()

	for _, fn := range observers {
		fn(grid)
	}

	if err != nil {
		logger.Error("saving attribute file", zap.String("tileset", name), zap.Error(err))
		return err
	}
	return nil
}

// sharingObserversLocked returns the observers of every tileset other than
// mpt00 still bound to the default grid, in tileset name order.
func (m *Manager) sharingObserversLocked() []func(*formats.AttributeGrid) {
	names := make([]string, 0, len(m.entries))
	for name, h := range m.entries {
		if name != DefaultTileset && h.ownership == SharedDefault {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var fns []func(*formats.AttributeGrid)
	for _, name := range names {
		fns = append(fns, m.entries[name].observersLocked()...)
	}
	return fns
}

// Names returns the cached tileset names in sorted order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wipe drops every cached grid and the default grid. Handles obtained
// before the wipe are detached from the manager.
func (m *Manager) Wipe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Handle)
	m.def = defaultGrid{}
	logger.Debug("attribute cache wiped")
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &formats.IOError{Op: "stat", Path: path, Err: err}
}
