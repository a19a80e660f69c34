package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
)

func CreatePriorityCommand() *PriorityCommand {
	pc := &PriorityCommand{
		fs: flag.NewFlagSet("priority", flag.ExitOnError),
	}

	pc.fs.StringVar(&pc.PresetID, "preset", "", "Arbitration preset to apply on the bottleneck")
	pc.fs.BoolVar(&pc.Clear, "clear", false, "Clear the bottleneck arbitration")
	pc.fs.BoolVar(&pc.Status, "status", false, "Show the bottleneck arbitration status")

	return pc
}

// PriorityCommand manages the shared-bottleneck arbitration.
type PriorityCommand struct {
	fs   *flag.FlagSet
	deps *domain.AppDependencies

	PresetID string
	Clear    bool
	Status   bool
}

func (p *PriorityCommand) Name() string {
	return p.fs.Name()
}

func (p *PriorityCommand) Init(args []string, ctx *AppContext) error {
	if err := p.fs.Parse(args); err != nil {
		return err
	}

	actions := 0
	if p.PresetID != "" {
		actions++
	}
	if p.Clear {
		actions++
	}
	if p.Status {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("exactly one of --preset, --clear or --status is required")
	}

	deps, err := buildDependencies(ctx.ConfigPath)
	if err != nil {
		return err
	}
	p.deps = deps
	return nil
}

func (p *PriorityCommand) Run() error {
	ctx := context.Background()

	switch {
	case p.Status:
		status, err := p.deps.Arbiter().Status(ctx)
		if err != nil {
			return err
		}
		return printJSON(status)
	case p.Clear:
		return p.deps.Arbiter().ClearPreset(ctx)
	default:
		result, err := p.deps.Arbiter().ApplyPreset(ctx, p.PresetID)
		if err != nil {
			return err
		}
		return printJSON(result)
	}
}
