package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
)

func CreateApplyCommand() *ApplyCommand {
	ac := &ApplyCommand{
		fs: flag.NewFlagSet("apply", flag.ExitOnError),
	}

	ac.fs.StringVar(&ac.SliceID, "slice", "", "Slice to shape (required)")
	ac.fs.StringVar(&ac.ProfileID, "profile", "", "QoS profile to apply (optional, neutral defaults when omitted)")
	ac.fs.StringVar(&ac.BandwidthDown, "bandwidth-down", "", "Downlink rate override (e.g. 5mbit)")
	ac.fs.StringVar(&ac.BandwidthUp, "bandwidth-up", "", "Uplink rate override (e.g. 2mbit)")
	ac.fs.IntVar(&ac.LatencyMs, "latency", -1, "Emulated delay override in ms")
	ac.fs.IntVar(&ac.JitterMs, "jitter", -1, "Emulated jitter override in ms")
	ac.fs.Float64Var(&ac.LossPct, "loss", -1, "Emulated loss override in percent")
	ac.fs.IntVar(&ac.DSCP, "dscp", -1, "DSCP marking override (0-63)")

	return ac
}

// ApplyCommand shapes one slice from the command line.
type ApplyCommand struct {
	fs   *flag.FlagSet
	deps *domain.AppDependencies

	SliceID       string
	ProfileID     string
	BandwidthDown string
	BandwidthUp   string
	LatencyMs     int
	JitterMs      int
	LossPct       float64
	DSCP          int
}

func (a *ApplyCommand) Name() string {
	return a.fs.Name()
}

func (a *ApplyCommand) Init(args []string, ctx *AppContext) error {
	if err := a.fs.Parse(args); err != nil {
		return err
	}

	if a.SliceID == "" {
		return fmt.Errorf("--slice is required")
	}

	deps, err := buildDependencies(ctx.ConfigPath)
	if err != nil {
		return err
	}
	a.deps = deps
	return nil
}

func (a *ApplyCommand) Run() error {
	result, err := a.deps.Engine().Apply(context.Background(), a.SliceID, a.ProfileID, a.overrides())
	if result != nil {
		if printErr := printJSON(result); printErr != nil {
			return printErr
		}
	}
	return err
}

// overrides maps only the explicitly given flags to override fields, so an
// omitted flag keeps the profile value. Negative sentinel values mark the
// numeric flags as unset.
func (a *ApplyCommand) overrides() *qos.Overrides {
	o := &qos.Overrides{}
	if a.BandwidthDown != "" {
		rate := qos.Rate(a.BandwidthDown)
		o.BandwidthDown = &rate
	}
	if a.BandwidthUp != "" {
		rate := qos.Rate(a.BandwidthUp)
		o.BandwidthUp = &rate
	}
	if a.LatencyMs >= 0 {
		o.LatencyMs = &a.LatencyMs
	}
	if a.JitterMs >= 0 {
		o.JitterMs = &a.JitterMs
	}
	if a.LossPct >= 0 {
		o.LossPct = &a.LossPct
	}
	if a.DSCP >= 0 {
		o.DSCP = &a.DSCP
	}
	if o.IsEmpty() {
		return nil
	}
	return o
}
