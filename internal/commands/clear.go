package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
)

func CreateClearCommand() *ClearCommand {
	cc := &ClearCommand{
		fs: flag.NewFlagSet("clear", flag.ExitOnError),
	}

	cc.fs.StringVar(&cc.SliceID, "slice", "", "Slice to clear")
	cc.fs.BoolVar(&cc.All, "all", false, "Clear every slice and the bottleneck arbitration")

	return cc
}

// ClearCommand removes shaping from one slice or from everything.
type ClearCommand struct {
	fs   *flag.FlagSet
	deps *domain.AppDependencies

	SliceID string
	All     bool
}

func (c *ClearCommand) Name() string {
	return c.fs.Name()
}

func (c *ClearCommand) Init(args []string, ctx *AppContext) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	if c.SliceID == "" && !c.All {
		return fmt.Errorf("either --slice or --all is required")
	}
	if c.SliceID != "" && c.All {
		return fmt.Errorf("--slice and --all can not be used together")
	}

	deps, err := buildDependencies(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.deps = deps
	return nil
}

func (c *ClearCommand) Run() error {
	ctx := context.Background()

	if c.All {
		results := c.deps.Engine().ClearAll(ctx)
		if err := c.deps.Arbiter().ClearPreset(ctx); err != nil {
			return err
		}
		return printJSON(results)
	}

	result, err := c.deps.Engine().Clear(ctx, c.SliceID)
	if result != nil {
		if printErr := printJSON(result); printErr != nil {
			return printErr
		}
	}
	return err
}
