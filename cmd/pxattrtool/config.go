package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type configCmd struct {
	save bool
}

func (c *configCmd) Name() string     { return "config" }
func (c *configCmd) Synopsis() string { return "print the effective configuration" }
func (c *configCmd) Usage() string {
	return "pxattrtool [-exe Game.exe] config [-save]\n"
}
func (c *configCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.save, "save", false, "Store the effective configuration in the user config directory")
}

func (c *configCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return fail(err)
	}
	os.Stdout.Write(data)

	if c.save {
		path, err := cfg.Save()
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", path)
	}

	return subcommands.ExitSuccess
}
