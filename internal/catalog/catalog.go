// Package catalog provides validated lookup over the configured profiles,
// slices, use cases and presets. Lookups fail fast with a coded error before
// any device is touched.
package catalog

import (
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
)

// Catalog indexes the configured entities by identifier.
type Catalog struct {
	profiles map[string]*config.ProfileConfig
	slices   map[string]*config.SliceConfig
	useCases map[string]*config.UseCaseConfig
	presets  map[string]*config.PresetConfig

	sliceOrder  []string
	presetOrder []string
	cfg         *config.Config
}

// New builds a catalog from the configuration. The configuration is assumed
// to be validated; duplicate identifiers would silently shadow each other.
func New(cfg *config.Config) *Catalog {
	c := &Catalog{
		profiles: make(map[string]*config.ProfileConfig, len(cfg.Profiles)),
		slices:   make(map[string]*config.SliceConfig, len(cfg.Slices)),
		useCases: make(map[string]*config.UseCaseConfig, len(cfg.UseCases)),
		presets:  make(map[string]*config.PresetConfig, len(cfg.Presets)),
		cfg:      cfg,
	}
	for _, p := range cfg.Profiles {
		c.profiles[p.ProfileID] = p
	}
	for _, s := range cfg.Slices {
		c.slices[s.SliceID] = s
		c.sliceOrder = append(c.sliceOrder, s.SliceID)
	}
	for _, uc := range cfg.UseCases {
		c.useCases[uc.UseCaseID] = uc
	}
	for _, p := range cfg.Presets {
		c.presets[p.PresetID] = p
		c.presetOrder = append(c.presetOrder, p.PresetID)
	}
	return c
}

// Profile looks up a QoS profile by identifier.
func (c *Catalog) Profile(id string) (*config.ProfileConfig, error) {
	if p, ok := c.profiles[id]; ok {
		return p, nil
	}
	return nil, errors.NewUnknownIdentifierError("profile", id)
}

// Slice looks up a slice by identifier.
func (c *Catalog) Slice(id string) (*config.SliceConfig, error) {
	if s, ok := c.slices[id]; ok {
		return s, nil
	}
	return nil, errors.NewUnknownIdentifierError("slice", id)
}

// UseCase looks up a use-case binding by identifier.
func (c *Catalog) UseCase(id string) (*config.UseCaseConfig, error) {
	if uc, ok := c.useCases[id]; ok {
		return uc, nil
	}
	return nil, errors.NewUnknownIdentifierError("use case", id)
}

// Preset looks up an arbitration preset by identifier.
func (c *Catalog) Preset(id string) (*config.PresetConfig, error) {
	if p, ok := c.presets[id]; ok {
		return p, nil
	}
	return nil, errors.NewUnknownIdentifierError("preset", id)
}

// Profiles returns the configured profiles in configuration order.
func (c *Catalog) Profiles() []*config.ProfileConfig {
	return c.cfg.Profiles
}

// Slices returns the configured slices in configuration order.
func (c *Catalog) Slices() []*config.SliceConfig {
	return c.cfg.Slices
}

// SliceIDs returns every slice identifier in configuration order.
func (c *Catalog) SliceIDs() []string {
	return c.sliceOrder
}

// UseCases returns the configured use-case bindings in configuration order.
func (c *Catalog) UseCases() []*config.UseCaseConfig {
	return c.cfg.UseCases
}

// Presets returns the configured presets in configuration order.
func (c *Catalog) Presets() []*config.PresetConfig {
	return c.cfg.Presets
}

// Bottleneck returns the shared-bottleneck description, or nil when the
// configuration defines none.
func (c *Catalog) Bottleneck() *config.BottleneckConfig {
	return c.cfg.Bottleneck
}
