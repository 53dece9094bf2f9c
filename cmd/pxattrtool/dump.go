package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type dumpCmd struct {
	decimal bool
}

func (c *dumpCmd) Name() string     { return "dump" }
func (c *dumpCmd) Synopsis() string { return "print a tileset's attribute grid" }
func (c *dumpCmd) Usage() string {
	return "pxattrtool dump [-d] <tileset>\n"
}
func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.decimal, "d", false, "Print values in decimal instead of hex")
}

func (c *dumpCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c)
	}

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return fail(err)
	}
	defer ws.Close()

	h, err := ws.Attrs.GetGrid(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	grid := h.Grid()

	format := "%02x"
	if c.decimal {
		format = "%3d"
	}

	cells := make([]string, grid.Width)
	for y := 0; y < int(grid.Height); y++ {
		for x, v := range grid.Row(y) {
			cells[x] = fmt.Sprintf(format, v)
		}
		fmt.Println(strings.Join(cells, " "))
	}

	return subcommands.ExitSuccess
}
