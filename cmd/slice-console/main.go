package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/commands"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", "", "Path to configuration file (built-in catalog when empty)")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "5G Testbed Slice QoS Console\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  service                 Run as a service/daemon (includes the REST API server)\n")
		fmt.Fprintf(os.Stderr, "  apply                   Apply a QoS profile (with optional overrides) to a slice\n")
		fmt.Fprintf(os.Stderr, "  auto                    Derive per-slice profiles from use-case ids and apply them\n")
		fmt.Fprintf(os.Stderr, "  clear                   Remove shaping from one slice or from everything\n")
		fmt.Fprintf(os.Stderr, "  status                  Show active rules and live device state\n")
		fmt.Fprintf(os.Stderr, "  priority                Apply/clear/inspect the shared-bottleneck arbitration\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateServiceCommand(),
		commands.CreateApplyCommand(),
		commands.CreateAutoCommand(),
		commands.CreateClearCommand(),
		commands.CreateStatusCommand(),
		commands.CreatePriorityCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
