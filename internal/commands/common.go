package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
}

// loadAndValidateConfigOrFail loads the configuration (built-in catalog when
// no path is given) and validates it.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

// buildDependencies loads, validates and wires everything for a command.
func buildDependencies(configPath string) (*domain.AppDependencies, error) {
	cfg, err := loadAndValidateConfigOrFail(configPath)
	if err != nil {
		return nil, err
	}
	return domain.NewAppDependencies(cfg)
}

// printJSON renders a command result to stdout for scripting.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
