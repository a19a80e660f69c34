package commands

import (
	"context"
	"flag"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
)

func CreateStatusCommand() *StatusCommand {
	sc := &StatusCommand{
		fs: flag.NewFlagSet("status", flag.ExitOnError),
	}

	sc.fs.StringVar(&sc.SliceID, "slice", "", "Limit status to one slice")

	return sc
}

// StatusCommand prints the transport status as JSON.
type StatusCommand struct {
	fs   *flag.FlagSet
	deps *domain.AppDependencies

	SliceID string
}

func (s *StatusCommand) Name() string {
	return s.fs.Name()
}

func (s *StatusCommand) Init(args []string, ctx *AppContext) error {
	if err := s.fs.Parse(args); err != nil {
		return err
	}

	deps, err := buildDependencies(ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.deps = deps
	return nil
}

func (s *StatusCommand) Run() error {
	ctx := context.Background()

	if s.SliceID != "" {
		status, err := s.deps.Engine().SliceStatus(ctx, s.SliceID)
		if err != nil {
			return err
		}
		return printJSON(status)
	}

	return printJSON(s.deps.Engine().FullStatus(ctx))
}
