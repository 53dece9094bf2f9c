package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"github.com/fdeitylink/kerotools/internal/config"
	"github.com/fdeitylink/kerotools/internal/logger"
	"github.com/fdeitylink/kerotools/internal/workspace"
)

var errNoExecutable = errors.New("no mod executable: pass -exe or set mod.executable in the config file")

// loadConfig reads the config and starts logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

// openWorkspace loads the configured mod.
func openWorkspace(ctx context.Context) (*workspace.Workspace, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Mod.Executable == "" {
		return nil, nil, errNoExecutable
	}

	ws, err := workspace.Open(ctx, cfg, cfg.Mod.Executable)
	if err != nil {
		return nil, nil, err
	}
	return ws, cfg, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usage(cmd subcommands.Command) subcommands.ExitStatus {
	fmt.Fprint(os.Stderr, "Usage: ", cmd.Usage())
	return subcommands.ExitUsageError
}

// parseCoord parses a grid coordinate argument.
func parseCoord(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

// parseAttribute parses an attribute value in decimal or 0x-prefixed hex.
func parseAttribute(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %q: must be 0-255", s)
	}
	return uint8(v), nil
}
