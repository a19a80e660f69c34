package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/api"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}

	sc.fs.StringVar(&sc.Listen, "listen", "", "API listen address (overrides configuration)")
	sc.fs.BoolVar(&sc.ClearOnExit, "clear-on-exit", false, "Clear all shaping rules on shutdown")

	return sc
}

// ServiceCommand runs the operator API server until interrupted.
type ServiceCommand struct {
	fs   *flag.FlagSet
	deps *domain.AppDependencies

	Listen      string
	ClearOnExit bool

	apiSupervisor *Supervisor
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
	if err := s.fs.Parse(args); err != nil {
		return err
	}

	deps, err := buildDependencies(ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.deps = deps

	if s.Listen == "" {
		s.Listen = deps.Config().APIListenOrDefault()
	}
	return nil
}

func (s *ServiceCommand) Run() error {
	log.Infof("Starting slice console service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server := api.NewServer(s.deps, s.Listen)

	s.apiSupervisor = NewSupervisor(SupervisorConfig{Name: "api-server"}, func(runCtx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-runCtx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return server.Stop(shutdownCtx)
		}
	})

	if err := s.apiSupervisor.Start(ctx); err != nil {
		return err
	}

	sig := <-sigChan
	log.Infof("Received %v, shutting down...", sig)

	if s.ClearOnExit {
		clearCtx, clearCancel := context.WithTimeout(context.Background(), 30*time.Second)
		s.deps.Engine().ClearAll(clearCtx)
		if err := s.deps.Arbiter().ClearPreset(clearCtx); err != nil {
			log.Warnf("Clearing arbitration on exit: %v", err)
		}
		clearCancel()
	}

	cancel()
	return s.apiSupervisor.Stop()
}
