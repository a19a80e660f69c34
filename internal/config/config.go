package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

// Load returns the configuration to run with. An empty path selects the
// built-in testbed catalog; otherwise the TOML file at path is loaded and
// merged over the built-in defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		log.Debugf("No configuration file given, using built-in catalog")
		return DefaultConfig(), nil
	}
	return LoadConfig(configPath)
}

// LoadConfig reads and parses the TOML configuration file at configPath.
// Catalog sections absent from the file are filled from the built-in
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Errorf("Configuration file not found: %s", configFile)
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := toml.Unmarshal(content, &config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	config._absConfigFilePath = configFile
	config.fillDefaults()

	log.Debugf("Configuration file path: %s", configFile)

	return &config, nil
}

// fillDefaults completes sections the configuration file left out with the
// built-in catalog, so a file can redefine just the slices (or just the
// profiles) without repeating everything else.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.General == nil {
		c.General = defaults.General
	} else {
		// A partial [general] section keeps the defaults for the fields it
		// leaves out, so the zero values never reach validation.
		if c.General.StepTimeoutSeconds == 0 {
			c.General.StepTimeoutSeconds = DefaultStepTimeoutSeconds
		}
		if c.General.APIListen == "" {
			c.General.APIListen = DefaultAPIListen
		}
	}
	if len(c.Profiles) == 0 {
		c.Profiles = defaults.Profiles
	}
	if len(c.Slices) == 0 {
		c.Slices = defaults.Slices
	}
	if len(c.UseCases) == 0 {
		c.UseCases = defaults.UseCases
	}
	if len(c.Presets) == 0 {
		c.Presets = defaults.Presets
	}
	if c.Bottleneck == nil {
		c.Bottleneck = defaults.Bottleneck
	}
}

// GetConfigDir returns the directory holding the loaded configuration file.
func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}
