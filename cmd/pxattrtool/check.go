package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/fdeitylink/kerotools/internal/logger"
	"github.com/fdeitylink/kerotools/internal/tileattr"
)

type checkCmd struct {
	quiet bool
}

func (c *checkCmd) Name() string     { return "check" }
func (c *checkCmd) Synopsis() string { return "load the attributes of every tileset in the mod" }
func (c *checkCmd) Usage() string {
	return "pxattrtool check [-q]\n"
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "q", false, "Do not show a progress bar")
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	ws, _, err := openWorkspace(ctx)
	if err != nil {
		return fail(err)
	}
	defer ws.Close()

	names := ws.Session.TilesetNames()

	var bar *progressbar.ProgressBar
	if !c.quiet {
		bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("tilesets"))
	}

	var owned, shared int
	var failures []string
	for _, name := range names {
		h, err := ws.Attrs.GetGrid(name)
		switch {
		case err != nil:
			logger.Warn("tileset attributes unreadable", zap.String("tileset", name), zap.Error(err))
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
		case h.Ownership() == tileattr.Owned:
			owned++
		default:
			shared++
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("Tilesets:        %d\n", len(names))
	fmt.Printf("Own attributes:  %d\n", owned)
	fmt.Printf("Using %s:     %d\n", tileattr.DefaultTileset, shared)
	fmt.Printf("Failed:          %d\n", len(failures))
	for _, line := range failures {
		fmt.Printf("  %s\n", line)
	}

	if len(failures) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
