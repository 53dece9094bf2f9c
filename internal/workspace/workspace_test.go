package workspace

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdeitylink/kerotools/internal/config"
	"github.com/fdeitylink/kerotools/internal/gamedata"
	"github.com/fdeitylink/kerotools/internal/tileattr"
	"github.com/fdeitylink/kerotools/pkg/formats"
)

func createTestMod(t *testing.T) (exe, imgDir string) {
	t.Helper()

	root := t.TempDir()
	exe = filepath.Join(root, "KeroBlaster.exe")
	require.NoError(t, os.WriteFile(exe, nil, 0644))

	rsc := filepath.Join(root, "rsc_k")
	for _, folder := range []string{gamedata.BGMFolder, gamedata.MapFolder, gamedata.ImageFolder, gamedata.SFXFolder, gamedata.ScriptFolder} {
		require.NoError(t, os.MkdirAll(filepath.Join(rsc, folder), 0755))
	}
	imgDir = filepath.Join(rsc, gamedata.ImageFolder)

	require.NoError(t, formats.WritePxAttrFile(filepath.Join(imgDir, "mpt00.pxattr"), formats.NewAttributeGrid(16, 16)))

	f, err := os.Create(filepath.Join(imgDir, "cave.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 128, 64))))
	require.NoError(t, f.Close())

	return exe, imgDir
}

func TestOpenAndClose(t *testing.T) {
	exe, imgDir := createTestMod(t)

	ws, err := Open(context.Background(), config.Default(), exe)
	require.NoError(t, err)
	require.True(t, ws.Session.Active())
	require.Equal(t, []string{"cave"}, ws.Session.TilesetNames())

	h, err := ws.Attrs.GetGrid("cave")
	require.NoError(t, err)
	require.Equal(t, tileattr.SharedDefault, h.Ownership())

	w, ht, err := ws.Tilesets.GridSize("cave")
	require.NoError(t, err)
	require.Equal(t, uint16(16), w)
	require.Equal(t, uint16(8), ht)

	require.NoError(t, ws.Attrs.SetCell("cave", 3, 3, 1))
	_, err = os.Stat(filepath.Join(imgDir, "cave.pxattr"))
	require.NoError(t, err)

	ws.Close()
	require.False(t, ws.Session.Active())
	require.Empty(t, ws.Attrs.Names())
	require.Panics(t, func() { _, _ = ws.Attrs.GetGrid("cave") })
}

func TestOpen_Error(t *testing.T) {
	_, err := Open(context.Background(), config.Default(), filepath.Join(t.TempDir(), "nope.exe"))
	require.Error(t, err)
}

func TestOpen_Cancelled(t *testing.T) {
	exe, _ := createTestMod(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, config.Default(), exe)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMapTilesetsResolveThroughAttrs(t *testing.T) {
	exe, imgDir := createTestMod(t)
	require.NoError(t, formats.WritePxAttrFile(filepath.Join(imgDir, "forest.pxattr"), formats.NewAttributeGrid(2, 2)))

	p := formats.NewPxPack()
	p.Head.Tilesets[0].Name = "forest"
	p.Head.Tilesets[1].Name = "cave"
	mapDir := filepath.Join(filepath.Dir(imgDir), gamedata.MapFolder)
	require.NoError(t, formats.WritePxPackFile(filepath.Join(mapDir, "stage1"+formats.PxPackExtension), p))

	ws, err := Open(context.Background(), config.Default(), exe)
	require.NoError(t, err)
	defer ws.Close()

	require.Equal(t, []string{"stage1"}, ws.Session.MapNames())

	loaded, err := formats.ReadPxPackFile(filepath.Join(ws.Session.MapDir(), "stage1"+formats.PxPackExtension))
	require.NoError(t, err)

	ownership := make(map[string]tileattr.Ownership)
	for _, name := range loaded.TilesetNames() {
		h, err := ws.Attrs.GetGrid(name)
		require.NoError(t, err)
		ownership[name] = h.Ownership()
	}
	require.Equal(t, map[string]tileattr.Ownership{
		"forest": tileattr.Owned,
		"cave":   tileattr.SharedDefault,
	}, ownership)
}
