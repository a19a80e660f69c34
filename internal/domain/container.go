// Package domain wires the application together: it builds the engine, the
// arbiter and their device capabilities from configuration, so commands and
// the API share one set of dependencies instead of global state.
package domain

import (
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/arbiter"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/catalog"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/engine"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/store"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/tc"
)

// AppDependencies is a dependency injection container holding the shared
// application components. Tests build one with mock capabilities; production
// code uses NewAppDependencies.
type AppDependencies struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	rules   *store.RuleStore
	engine  *engine.Engine
	arbiter *arbiter.Arbiter
}

// Capabilities are the device-facing implementations injected into the
// container. Leave a field nil to get the production implementation.
type Capabilities struct {
	Configurator tc.Configurator
	Resolver     tc.AddressResolver
	Marker       tc.Marker
}

// NewAppDependencies builds the container from a validated configuration
// with production device capabilities.
func NewAppDependencies(cfg *config.Config) (*AppDependencies, error) {
	return NewAppDependenciesWith(cfg, Capabilities{})
}

// NewAppDependenciesWith builds the container, overriding any capability
// that is non-nil. Used by tests and by commands that must not touch devices.
func NewAppDependenciesWith(cfg *config.Config, caps Capabilities) (*AppDependencies, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	if caps.Configurator == nil {
		caps.Configurator = tc.NewNetlinkConfigurator()
	}
	if caps.Resolver == nil {
		caps.Resolver = tc.NewNetlinkAddressResolver()
	}
	if caps.Marker == nil {
		marker, err := tc.NewIPTablesMarker()
		if err != nil {
			return nil, err
		}
		caps.Marker = marker
	}

	cat := catalog.New(cfg)
	rules := store.NewRuleStore()
	stepTimeout := time.Duration(cfg.StepTimeoutSecondsOrDefault()) * time.Second

	return &AppDependencies{
		cfg:     cfg,
		catalog: cat,
		rules:   rules,
		engine:  engine.New(cat, caps.Configurator, caps.Marker, rules, stepTimeout),
		arbiter: arbiter.New(cat, caps.Configurator, caps.Resolver, rules, stepTimeout),
	}, nil
}

// Config returns the loaded configuration.
func (d *AppDependencies) Config() *config.Config {
	return d.cfg
}

// Catalog returns the identifier catalog.
func (d *AppDependencies) Catalog() *catalog.Catalog {
	return d.catalog
}

// Rules returns the shared rule store.
func (d *AppDependencies) Rules() *store.RuleStore {
	return d.rules
}

// Engine returns the per-slice QoS engine.
func (d *AppDependencies) Engine() *engine.Engine {
	return d.engine
}

// Arbiter returns the shared-bottleneck arbiter.
func (d *AppDependencies) Arbiter() *arbiter.Arbiter {
	return d.arbiter
}
