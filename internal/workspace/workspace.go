// Package workspace ties together everything loaded for one mod: its
// resource listing, attribute grids and tileset images.
package workspace

import (
	"context"

	"go.uber.org/zap"

	"github.com/fdeitylink/kerotools/internal/config"
	"github.com/fdeitylink/kerotools/internal/gamedata"
	"github.com/fdeitylink/kerotools/internal/logger"
	"github.com/fdeitylink/kerotools/internal/tileattr"
	"github.com/fdeitylink/kerotools/internal/tileset"
)

// Workspace is the editing context for one loaded mod.
type Workspace struct {
	Session  *gamedata.Session
	Attrs    *tileattr.Manager
	Tilesets *tileset.Cache
}

// Open loads the mod at executable on a background goroutine and waits for
// it, returning early if ctx is done.
func Open(ctx context.Context, cfg *config.Config, executable string) (*Workspace, error) {
	logger.Debug("loading mod", zap.String("executable", executable))

	select {
	case res := <-gamedata.LoadAsync(ctx, executable):
		if res.Err != nil {
			return nil, res.Err
		}
		return &Workspace{
			Session:  res.Session,
			Attrs:    tileattr.NewManager(res.Session),
			Tilesets: tileset.NewCache(res.Session, cfg.Tileset),
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases everything the workspace loaded. The workspace cannot be used afterwards.
func (w *Workspace) Close() {
	w.Attrs.Wipe()
	w.Tilesets.Wipe()
	w.Session.Wipe()
}
