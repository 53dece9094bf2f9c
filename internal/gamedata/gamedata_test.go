package gamedata

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdeitylink/kerotools/pkg/formats"
)

// createTestMod lays out a minimal mod next to an executable and returns the exe path.
func createTestMod(t *testing.T, rsc string, files ...string) string {
	t.Helper()

	root := t.TempDir()
	exe := filepath.Join(root, "Game.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0644))

	for _, folder := range []string{BGMFolder, MapFolder, ImageFolder, SFXFolder, ScriptFolder} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, rsc, folder), 0755))
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, rsc, f), nil, 0644))
	}

	return exe
}

func TestLoad_KeroBlaster(t *testing.T) {
	exe := createTestMod(t, "rsc_k",
		"img/mpt00.png",
		"img/forest.png",
		"img/forest.pxattr",
		"field/stage1.pxpack",
		"bgm/title.ptcop",
		"se/jump.ptnoise",
		"text/stage1.pxeve",
	)

	s, err := Load(context.Background(), exe)
	require.NoError(t, err)

	require.True(t, s.Active())
	require.Equal(t, KeroBlaster, s.ModType())
	require.Equal(t, exe, s.Executable())
	require.Equal(t, filepath.Join(filepath.Dir(exe), "rsc_k"), s.ResourceDir())
	require.Equal(t, filepath.Join(filepath.Dir(exe), "rsc_k", "img"), s.ImageDir())

	require.Equal(t, []string{"forest", "mpt00"}, s.TilesetNames())
	require.Len(t, s.Maps(), 1)
	require.Equal(t, filepath.Join(filepath.Dir(exe), "rsc_k", "field"), s.MapDir())
	require.Equal(t, []string{"stage1"}, s.MapNames())
	require.Len(t, s.BGMs(), 1)
	require.Len(t, s.SFX(), 1)
	require.Len(t, s.Scripts(), 1)
}

func TestLoad_PinkHour(t *testing.T) {
	exe := createTestMod(t, "rsc_p")

	s, err := Load(context.Background(), exe)
	require.NoError(t, err)
	require.Equal(t, PinkHour, s.ModType())
}

func TestLoad_FiltersNames(t *testing.T) {
	exe := createTestMod(t, "rsc_k",
		"img/ok.png",
		"img/has space.png",
		"img/abcdefghijklmnop.png", // 16 bytes
		"img/abcdefghijklmno.png",  // 15 bytes
		"img/テストテストテス.png",        // 16 Shift-JIS bytes
		"img/notimage.bmp",
	)

	s, err := Load(context.Background(), exe)
	require.NoError(t, err)
	require.Equal(t, []string{"abcdefghijklmno", "ok"}, s.TilesetNames())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("not an exe", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "Game.bin"))
		require.ErrorIs(t, err, ErrNotExecutable)
	})

	t.Run("missing exe", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "Game.exe"))
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("no resource folder", func(t *testing.T) {
		root := t.TempDir()
		exe := filepath.Join(root, "Game.exe")
		require.NoError(t, os.WriteFile(exe, nil, 0644))

		_, err := Load(context.Background(), exe)
		require.ErrorIs(t, err, ErrNoResourceFolder)
	})

	t.Run("missing resource subfolder", func(t *testing.T) {
		exe := createTestMod(t, "rsc_k")
		require.NoError(t, os.RemoveAll(filepath.Join(filepath.Dir(exe), "rsc_k", SFXFolder)))

		_, err := Load(context.Background(), exe)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("cancelled", func(t *testing.T) {
		exe := createTestMod(t, "rsc_k", "img/a.png")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Load(ctx, exe)
		require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	})
}

func TestLoadAsync(t *testing.T) {
	exe := createTestMod(t, "rsc_k", "img/mpt00.png")

	res, ok := <-LoadAsync(context.Background(), exe)
	require.True(t, ok)
	require.NoError(t, res.Err)
	require.True(t, res.Session.Active())

	_, ok = <-LoadAsync(context.Background(), exe)
	require.True(t, ok)
}

func TestLoadAsync_Error(t *testing.T) {
	ch := LoadAsync(context.Background(), "missing.txt")

	res := <-ch
	require.ErrorIs(t, res.Err, ErrNotExecutable)
	require.Nil(t, res.Session)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after the result")
}

func TestWipe(t *testing.T) {
	exe := createTestMod(t, "rsc_k", "img/mpt00.png")

	s, err := Load(context.Background(), exe)
	require.NoError(t, err)

	s.Wipe()
	require.False(t, s.Active())
	require.Panics(t, func() { s.ImageDir() })
	require.Panics(t, func() { s.TilesetNames() })
	require.Panics(t, func() { s.MapNames() })
}

func TestInactiveSessionPanics(t *testing.T) {
	var s Session
	require.False(t, s.Active())
	require.Panics(t, func() { s.ModType() })
	require.Panics(t, func() { s.Executable() })
	require.Panics(t, func() { s.Images() })

	var nilSession *Session
	require.False(t, nilSession.Active())
}

func TestModTypeString(t *testing.T) {
	tests := []struct {
		modType  ModType
		expected string
	}{
		{PinkHour, "Pink Hour"},
		{PinkHeaven, "Pink Heaven"},
		{KeroBlaster, "Kero Blaster"},
		{ModType(42), "Unknown(42)"},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, tc.modType.String())
	}
}

func TestValidResourceName(t *testing.T) {
	require.True(t, ValidResourceName("mpt00"))
	require.False(t, ValidResourceName(""))
	require.False(t, ValidResourceName("two words"))
	require.False(t, ValidResourceName("sixteencharsname"))
	require.True(t, ValidResourceName("fifteencharname"))
}

func TestValidResourceName_CountsShiftJISBytes(t *testing.T) {
	require.Equal(t, formats.PxPackNameMaxLen, MaxNameLength)

	// 7 full-width characters are 14 bytes, 8 are 16.
	require.True(t, ValidResourceName("テストテストテ"))
	require.False(t, ValidResourceName("テストテストテス"))

	// A name that fits the listing also fits a map's name field.
	p := formats.NewPxPack()
	p.Head.Tilesets[0].Name = "テストテストテ"
	_, err := p.MarshalBinary()
	require.NoError(t, err)
}
