// pxattrtool inspects and edits the tile attribute files of a Kero Blaster engine mod.
//
// Usage:
//
//	pxattrtool [-exe Game.exe] [-config file] [-debug] <command> [args]
//
// Run "pxattrtool help" for the list of commands.
package main

import (
	"context"
	"os"

	"github.com/google/subcommands"

	"github.com/fdeitylink/kerotools/internal/config"
	"github.com/fdeitylink/kerotools/internal/logger"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&infoCmd{}, "tileset")
	subcommands.Register(&dumpCmd{}, "tileset")
	subcommands.Register(&setCmd{}, "tileset")
	subcommands.Register(&checkCmd{}, "tileset")
	subcommands.Register(&mapCmd{}, "map")
	subcommands.Register(&newCmd{}, "file")
	subcommands.Register(&configCmd{}, "")

	config.ParseFlags()
	status := subcommands.Execute(context.Background())
	logger.Sync()
	os.Exit(int(status))
}
