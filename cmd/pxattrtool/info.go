package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/google/subcommands"
)

type infoCmd struct{}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "show a tileset's attribute grid summary" }
func (c *infoCmd) Usage() string {
	return "pxattrtool info <tileset>\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {}

func (c *infoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c)
	}
	name := f.Arg(0)

	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return fail(err)
	}
	defer ws.Close()

	h, err := ws.Attrs.GetGrid(name)
	if err != nil {
		return fail(err)
	}
	grid := h.Grid()

	fmt.Printf("Tileset:   %s\n", name)
	fmt.Printf("Mod:       %s (%s)\n", ws.Session.Executable(), ws.Session.ModType())
	fmt.Printf("File:      %s\n", h.Path())
	fmt.Printf("Ownership: %s\n", h.Ownership())
	fmt.Printf("Size:      %dx%d\n", grid.Width, grid.Height)

	if grid.Empty() {
		return subcommands.ExitSuccess
	}

	counts := grid.CountByValue()
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, int(v))
	}
	sort.Ints(values)

	fmt.Println()
	fmt.Println("Cells by attribute:")
	for _, v := range values {
		fmt.Printf("  0x%02x  %d\n", v, counts[uint8(v)])
	}

	return subcommands.ExitSuccess
}
