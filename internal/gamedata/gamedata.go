// Package gamedata locates the resources of a Kero Blaster engine mod.
//
// A Session is created from the mod's executable: the directory holding it
// must contain a resource folder (rsc_k or rsc_p) whose subfolders are
// scanned into per-kind resource lists. Accessors panic on an inactive
// session, which is a caller sequencing bug rather than a runtime condition.
package gamedata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fdeitylink/kerotools/internal/logger"
	"github.com/fdeitylink/kerotools/pkg/encoding"
	"github.com/fdeitylink/kerotools/pkg/formats"
)

// Resource folders and extensions, relative to the resource folder.
const (
	BGMFolder    = "bgm"
	BGMExtension = ".ptcop"

	MapFolder    = "field"
	MapExtension = ".pxpack"

	ImageFolder    = "img"
	ImageExtension = ".png"

	SFXFolder    = "se"
	SFXExtension = ".ptnoise"

	ScriptFolder    = "text"
	ScriptExtension = ".pxeve"
)

// MaxNameLength is the longest resource base name, in Shift-JIS bytes.
// Maps reference resources through PXPACK name fields, so a longer name
// cannot be used from a map.
const MaxNameLength = formats.PxPackNameMaxLen

// Session errors.
var (
	ErrNotExecutable    = errors.New("mod must be loaded from a .exe file")
	ErrNoResourceFolder = errors.New("no rsc_k or rsc_p folder next to the executable")
)

// ModType identifies which game a mod is based on.
type ModType int

// Mod types.
const (
	ModUnknown ModType = iota
	PinkHour
	PinkHeaven
	KeroBlaster
)

// String returns a human-readable mod type name.
func (m ModType) String() string {
	switch m {
	case PinkHour:
		return "Pink Hour"
	case PinkHeaven:
		return "Pink Heaven"
	case KeroBlaster:
		return "Kero Blaster"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// resourceFolders maps a resource folder name to the mod type it implies.
var resourceFolders = []struct {
	name    string
	modType ModType
}{
	{"rsc_k", KeroBlaster},
	// Pink Heaven shares the rsc_p layout and cannot be told apart on disk.
	{"rsc_p", PinkHour},
}

// Session describes a loaded mod.
type Session struct {
	active      bool
	modType     ModType
	executable  string
	resourceDir string

	bgms    []string
	maps    []string
	images  []string
	sfx     []string
	scripts []string
}

// LoadResult is delivered by LoadAsync.
type LoadResult struct {
	Session *Session
	Err     error
}

// LoadAsync loads the mod on a background goroutine. Exactly one result is
// sent on the returned channel, which is then closed.
func LoadAsync(ctx context.Context, executable string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		s, err := Load(ctx, executable)
		ch <- LoadResult{Session: s, Err: err}
	}()
	return ch
}

// Load locates the mod's resource folder and lists its resources.
func Load(ctx context.Context, executable string) (*Session, error) {
	exe, err := filepath.Abs(executable)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", executable, err)
	}

	if !strings.HasSuffix(strings.ToLower(exe), ".exe") {
		return nil, fmt.Errorf("%w: %s", ErrNotExecutable, exe)
	}
	if _, err := os.Stat(exe); err != nil {
		return nil, fmt.Errorf("mod executable: %w", err)
	}

	resourceDir, modType, err := findResourceFolder(filepath.Dir(exe))
	if err != nil {
		return nil, err
	}

	s := &Session{
		modType:     modType,
		executable:  exe,
		resourceDir: resourceDir,
	}

	lists := []struct {
		folder, ext string
		dst         *[]string
	}{
		{BGMFolder, BGMExtension, &s.bgms},
		{MapFolder, MapExtension, &s.maps},
		{ImageFolder, ImageExtension, &s.images},
		{SFXFolder, SFXExtension, &s.sfx},
		{ScriptFolder, ScriptExtension, &s.scripts},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lists {
		l := l
		g.Go(func() error {
			files, err := listResources(gctx, filepath.Join(resourceDir, l.folder), l.ext)
			if err != nil {
				return err
			}
			*l.dst = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("listing resources of %s: %w", exe, err)
	}

	s.active = true

	logger.Info("mod loaded",
		zap.String("executable", exe),
		zap.Stringer("type", modType),
		zap.Int("maps", len(s.maps)),
		zap.Int("images", len(s.images)))

	return s, nil
}

func findResourceFolder(dir string) (string, ModType, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ModUnknown, fmt.Errorf("scanning %s: %w", dir, err)
	}

	present := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			present[e.Name()] = true
		}
	}

	for _, rf := range resourceFolders {
		if present[rf.name] {
			return filepath.Join(dir, rf.name), rf.modType, nil
		}
	}
	return "", ModUnknown, fmt.Errorf("%w: %s", ErrNoResourceFolder, dir)
}

// listResources returns the files in dir with extension ext whose base
// names the engine can reference, sorted by name.
func listResources(ctx context.Context, dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		if !ValidResourceName(BaseName(e.Name(), ext)) {
			logger.Debug("skipping resource", zap.String("file", e.Name()))
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// ValidResourceName reports whether name fits the engine's resource name
// field and contains no spaces.
func ValidResourceName(name string) bool {
	return name != "" && !strings.Contains(name, " ") && encoding.ShiftJISLen(name) <= MaxNameLength
}

// BaseName strips the directory and ext from path.
func BaseName(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}

// Active reports whether the session holds a loaded mod.
func (s *Session) Active() bool {
	return s != nil && s.active
}

// Wipe clears everything the session holds. The session stays inactive afterwards.
func (s *Session) Wipe() {
	if s.active {
		logger.Info("mod unloaded", zap.String("executable", s.executable))
	}
	*s = Session{}
}

func (s *Session) checkActive(item string) {
	if !s.Active() {
		panic("gamedata: session must be loaded before " + item + " can be retrieved")
	}
}

// ModType returns the game the mod is based on.
func (s *Session) ModType() ModType {
	s.checkActive("mod type")
	return s.modType
}

// Executable returns the absolute path of the mod executable.
func (s *Session) Executable() string {
	s.checkActive("executable")
	return s.executable
}

// ResourceDir returns the mod's resource folder.
func (s *Session) ResourceDir() string {
	s.checkActive("resource folder")
	return s.resourceDir
}

// ImageDir returns the folder holding tileset images and their attribute files.
func (s *Session) ImageDir() string {
	s.checkActive("image folder")
	return filepath.Join(s.resourceDir, ImageFolder)
}

// MapDir returns the folder holding the mod's map files.
func (s *Session) MapDir() string {
	s.checkActive("map folder")
	return filepath.Join(s.resourceDir, MapFolder)
}

// BGMs returns the paths of the mod's music files.
func (s *Session) BGMs() []string {
	s.checkActive("bgms")
	return clone(s.bgms)
}

// Maps returns the paths of the mod's map files.
func (s *Session) Maps() []string {
	s.checkActive("maps")
	return clone(s.maps)
}

// Images returns the paths of the mod's images.
func (s *Session) Images() []string {
	s.checkActive("images")
	return clone(s.images)
}

// SFX returns the paths of the mod's sound effects.
func (s *Session) SFX() []string {
	s.checkActive("sfx")
	return clone(s.sfx)
}

// Scripts returns the paths of the mod's event scripts.
func (s *Session) Scripts() []string {
	s.checkActive("scripts")
	return clone(s.scripts)
}

// TilesetNames returns the base names of the mod's images, which is how tilesets are addressed.
func (s *Session) TilesetNames() []string {
	s.checkActive("tileset names")
	names := make([]string, len(s.images))
	for i, p := range s.images {
		names[i] = BaseName(p, ImageExtension)
	}
	return names
}

// MapNames returns the base names of the mod's map files.
func (s *Session) MapNames() []string {
	s.checkActive("map names")
	names := make([]string, len(s.maps))
	for i, p := range s.maps {
		names[i] = BaseName(p, MapExtension)
	}
	return names
}

func clone(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}
