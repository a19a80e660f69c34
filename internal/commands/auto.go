package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
)

func CreateAutoCommand() *AutoCommand {
	ac := &AutoCommand{
		fs: flag.NewFlagSet("auto", flag.ExitOnError),
	}
	return ac
}

// AutoCommand derives per-slice profiles from use-case ids given as
// positional arguments and applies them.
type AutoCommand struct {
	fs   *flag.FlagSet
	deps *domain.AppDependencies

	UseCases []string
}

func (a *AutoCommand) Name() string {
	return a.fs.Name()
}

func (a *AutoCommand) Init(args []string, ctx *AppContext) error {
	if err := a.fs.Parse(args); err != nil {
		return err
	}

	a.UseCases = a.fs.Args()
	if len(a.UseCases) == 0 {
		return fmt.Errorf("at least one use-case id is required (e.g. auto iot-environment vehicle-gps)")
	}

	deps, err := buildDependencies(ctx.ConfigPath)
	if err != nil {
		return err
	}
	a.deps = deps
	return nil
}

func (a *AutoCommand) Run() error {
	result := a.deps.Engine().AutoConfigure(context.Background(), a.UseCases)
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("auto-configuration partially failed")
	}
	return nil
}
