package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type setCmd struct{}

func (c *setCmd) Name() string     { return "set" }
func (c *setCmd) Synopsis() string { return "set one tile attribute and save the file" }
func (c *setCmd) Usage() string {
	return "pxattrtool set <tileset> <x> <y> <value>\n"
}
func (c *setCmd) SetFlags(f *flag.FlagSet) {}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 4 {
		return usage(c)
	}
	name := f.Arg(0)

	x, err := parseCoord("x", f.Arg(1))
	if err != nil {
		return fail(err)
	}
	y, err := parseCoord("y", f.Arg(2))
	if err != nil {
		return fail(err)
	}
	value, err := parseAttribute(f.Arg(3))
	if err != nil {
		return fail(err)
	}

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return fail(err)
	}
	defer ws.Close()

	h, err := ws.Attrs.GetGrid(name)
	if err != nil {
		return fail(err)
	}

	// SetCell treats bad coordinates as a programming error, so check them here.
	if _, ok := h.Attribute(x, y); !ok {
		grid := h.Grid()
		return fail(fmt.Errorf("cell (%d, %d) outside %dx%d grid of %s", x, y, grid.Width, grid.Height, name))
	}

	if err := ws.Attrs.SetCell(name, x, y, value); err != nil {
		return fail(err)
	}

	fmt.Printf("%s (%d, %d) = 0x%02x -> %s\n", name, x, y, value, h.Path())
	return subcommands.ExitSuccess
}
