package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/subcommands"

	"github.com/fdeitylink/kerotools/pkg/formats"
)

type newCmd struct {
	width  int
	height int
	from   string
	force  bool
}

func (c *newCmd) Name() string     { return "new" }
func (c *newCmd) Synopsis() string { return "write a zero-filled attribute file" }
func (c *newCmd) Usage() string {
	return "pxattrtool new (-w <cols> -h <rows> | -from <tileset>) [-f] <file.pxattr>\n"
}
func (c *newCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.width, "w", 0, "Grid width in tiles")
	f.IntVar(&c.height, "h", 0, "Grid height in tiles")
	f.StringVar(&c.from, "from", "", "Size the grid from this tileset's image (needs -exe)")
	f.BoolVar(&c.force, "f", false, "Overwrite an existing file")
}

func (c *newCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c)
	}
	path := f.Arg(0)

	if !c.force {
		if _, err := os.Stat(path); err == nil {
			return fail(fmt.Errorf("%s already exists (use -f to overwrite)", path))
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fail(err)
		}
	}

	width, height, err := c.size(ctx)
	if err != nil {
		return fail(err)
	}

	grid := formats.NewAttributeGrid(width, height)
	if err := formats.WritePxAttrFile(path, grid); err != nil {
		return fail(err)
	}

	fmt.Printf("Wrote %s (%dx%d)\n", path, grid.Width, grid.Height)
	return subcommands.ExitSuccess
}

func (c *newCmd) size(ctx context.Context) (uint16, uint16, error) {
	if c.from != "" {
		ws, _, err := openWorkspace(ctx)
		if err != nil {
			return 0, 0, err
		}
		defer ws.Close()
		return ws.Tilesets.GridSize(c.from)
	}

	if _, err := loadConfig(); err != nil {
		return 0, 0, err
	}
	if c.width < 0 || c.height < 0 || c.width > 0xFFFF || c.height > 0xFFFF {
		return 0, 0, fmt.Errorf("grid size %dx%d out of range", c.width, c.height)
	}
	return uint16(c.width), uint16(c.height), nil
}
