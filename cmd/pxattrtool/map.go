package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/fdeitylink/kerotools/pkg/formats"
)

type mapCmd struct {
	entities bool
}

func (c *mapCmd) Name() string     { return "map" }
func (c *mapCmd) Synopsis() string { return "show a map's layers and the attributes of their tilesets" }
func (c *mapCmd) Usage() string {
	return "pxattrtool map [-e] <map>\n"
}
func (c *mapCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.entities, "e", false, "Also list the map's entities")
}

func (c *mapCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c)
	}
	name := f.Arg(0)

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return fail(err)
	}
	defer ws.Close()

	p, err := formats.ReadPxPackFile(filepath.Join(ws.Session.MapDir(), name+formats.PxPackExtension))
	if err != nil {
		return fail(err)
	}
	h := p.Head

	fmt.Printf("Map:         %s\n", name)
	fmt.Printf("Description: %s\n", h.Description)
	fmt.Printf("Linked maps: %q\n", h.MapNames)
	fmt.Printf("Spritesheet: %s\n", h.Spritesheet)
	fmt.Printf("Background:  #%02x%02x%02x\n", h.Background.R, h.Background.G, h.Background.B)
	fmt.Println()

	failed := false
	for i, layer := range p.Layers {
		ts := h.Tilesets[i]
		fmt.Printf("Layer %d: %dx%d tiles, tileset %q (visibility %d, scroll %d)\n",
			i, layer.Width, layer.Height, ts.Name, ts.Visibility, ts.ScrollType)
		if ts.Name == "" {
			continue
		}

		attrs, err := ws.Attrs.GetGrid(ts.Name)
		if err != nil {
			fmt.Printf("  attributes: %v\n", err)
			failed = true
			continue
		}
		grid := attrs.Grid()
		fmt.Printf("  attributes: %dx%d, %s, %s\n", grid.Width, grid.Height, attrs.Ownership(), attrs.Path())
	}

	if c.entities {
		fmt.Println()
		fmt.Printf("Entities: %d\n", len(p.Entities))
		for _, e := range p.Entities {
			fmt.Printf("  (%d, %d) type 0x%02x flag 0x%02x %s\n", e.X, e.Y, e.Type, e.Flag, e.Name)
		}
	}

	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
