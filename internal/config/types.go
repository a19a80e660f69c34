package config

import (
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/tc"
)

type Config struct {
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`
	// Profiles is the QoS profile catalog. Each profile bundles shaping parameters under a stable identifier.
	Profiles []*ProfileConfig `toml:"profile,omitempty"`
	// Slices describes the managed network slices and their shaping endpoints.
	Slices []*SliceConfig `toml:"slice,omitempty"`
	// UseCases binds use-case identifiers to a slice and a profile for auto-configuration.
	UseCases []*UseCaseConfig `toml:"use_case,omitempty"`
	// Presets is the bandwidth-arbitration preset catalog for the shared bottleneck.
	Presets []*PresetConfig `toml:"preset,omitempty"`
	// Bottleneck is the shared link where two slices compete, plus the competing endpoints.
	Bottleneck *BottleneckConfig `toml:"bottleneck,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// StepTimeoutSeconds bounds every individual device-configuration step (default: 10, max: 10).
	StepTimeoutSeconds int `toml:"step_timeout_seconds" json:"step_timeout_seconds" validate:"gte=1,lte=10"`
	// APIListen is the listen address of the operator API (default: 127.0.0.1:8480).
	APIListen string `toml:"api_listen" json:"api_listen" validate:"hostport_or_empty"`
}

// ProfileConfig is one entry of the QoS profile catalog.
type ProfileConfig struct {
	// ProfileID is the stable identifier used in apply requests.
	ProfileID string `toml:"profile_id" json:"profile_id" validate:"required,identifier"`
	// Name is a human-readable title.
	Name string `toml:"name" json:"name" validate:"required"`
	// Description explains the intended traffic class.
	Description string `toml:"description" json:"description"`
	// BandwidthDown is the downlink rate expression (e.g. "5mbit").
	BandwidthDown qos.Rate `toml:"bandwidth_down" json:"bandwidth_down" validate:"required,rate_expr"`
	// BandwidthUp is the uplink rate expression.
	BandwidthUp qos.Rate `toml:"bandwidth_up" json:"bandwidth_up" validate:"required,rate_expr"`
	// LatencyMs is the emulated one-way delay in milliseconds (0 = none).
	LatencyMs int `toml:"latency_ms" json:"latency_ms" validate:"gte=0"`
	// JitterMs is the emulated delay variation in milliseconds (0 = none).
	JitterMs int `toml:"jitter_ms" json:"jitter_ms" validate:"gte=0"`
	// LossPct is the emulated packet loss percentage (0 = none).
	LossPct float64 `toml:"loss_pct" json:"loss_pct" validate:"gte=0,lte=100"`
	// Priority orders profiles competing for one slice; lower value wins.
	Priority int `toml:"priority" json:"priority" validate:"gte=0"`
	// DSCP, when non-zero, marks slice traffic with this DSCP value (e.g. EF=46).
	DSCP int `toml:"dscp,omitempty" json:"dscp,omitempty" validate:"gte=0,lte=63"`
}

// Params converts the profile to the shaping parameter set.
func (p *ProfileConfig) Params() qos.Params {
	return qos.Params{
		BandwidthDown: p.BandwidthDown,
		BandwidthUp:   p.BandwidthUp,
		LatencyMs:     p.LatencyMs,
		JitterMs:      p.JitterMs,
		LossPct:       p.LossPct,
		Priority:      p.Priority,
		DSCP:          p.DSCP,
	}
}

// EndpointConfig locates one shaping endpoint: a network interface, the host
// it lives on (informational) and an optional network namespace path.
type EndpointConfig struct {
	Host   string `toml:"host" json:"host"`
	Device string `toml:"device" json:"device" validate:"required"`
	Netns  string `toml:"netns,omitempty" json:"netns,omitempty"`
}

// TC converts the endpoint to a device handle.
func (e *EndpointConfig) TC() tc.Device {
	return tc.Device{Name: e.Device, Host: e.Host, Netns: e.Netns}
}

// SliceConfig describes one managed slice.
//
// Access is the UE-side interface where downlink policing and uplink shaping
// happen. Tunnel is the UE's GTP tunnel interface, shaped for uplink. Core is
// the UPF-side tunnel interface, shaped for downlink. Marking rules, when
// present, override the default DSCP marking rule set.
type SliceConfig struct {
	SliceID      string           `toml:"slice_id" json:"slice_id" validate:"required,identifier"`
	Subnet       string           `toml:"subnet" json:"subnet" validate:"required,cidrv4"`
	Access       *EndpointConfig  `toml:"access" json:"access" validate:"required"`
	Tunnel       *EndpointConfig  `toml:"tunnel" json:"tunnel"`
	Core         *EndpointConfig  `toml:"core" json:"core" validate:"required"`
	MarkingRules []tc.MarkingRule `toml:"marking_rule,omitempty" json:"marking_rule,omitempty"`
}

// UseCaseConfig binds a testbed use case to a slice and a profile.
type UseCaseConfig struct {
	UseCaseID string `toml:"use_case_id" json:"use_case_id" validate:"required,identifier"`
	Slice     string `toml:"slice" json:"slice" validate:"required"`
	Profile   string `toml:"profile" json:"profile" validate:"required"`
}

// PresetClassConfig is one HTB class of an arbitration preset.
type PresetClassConfig struct {
	// Rate is the guaranteed rate expression.
	Rate qos.Rate `toml:"rate" json:"rate" validate:"required,rate_expr"`
	// Ceil is the borrowing ceiling expression.
	Ceil qos.Rate `toml:"ceil" json:"ceil" validate:"required,rate_expr"`
	// Prio orders classes when borrowing spare bandwidth; lower is served first.
	Prio uint32 `toml:"prio" json:"prio" validate:"lte=7"`
}

// PresetConfig is one bandwidth-arbitration preset: how the bottleneck's
// total bandwidth is split between the two competing classes.
type PresetConfig struct {
	PresetID    string             `toml:"preset_id" json:"preset_id" validate:"required,identifier"`
	Name        string             `toml:"name" json:"name" validate:"required"`
	Description string             `toml:"description" json:"description"`
	TotalRate   qos.Rate           `toml:"total_rate" json:"total_rate" validate:"required,rate_expr"`
	ClassA      *PresetClassConfig `toml:"class_a" json:"class_a" validate:"required"`
	ClassB      *PresetClassConfig `toml:"class_b" json:"class_b" validate:"required"`
	// DefaultClass catches unclassified traffic. Optional; a built-in
	// 2mbit/5mbit prio 3 class is used when omitted.
	DefaultClass *PresetClassConfig `toml:"default_class,omitempty" json:"default_class,omitempty"`
}

// BottleneckConfig describes the shared link and the two competing endpoints.
// The endpoints' addresses are resolved at apply time, not configured.
type BottleneckConfig struct {
	// Endpoint is the interface carrying the shared bottleneck (egress towards both classes).
	Endpoint *EndpointConfig `toml:"endpoint" json:"endpoint" validate:"required"`
	// ClassA is the endpoint whose traffic lands in the preset's class A.
	ClassA *EndpointConfig `toml:"class_a_endpoint" json:"class_a_endpoint" validate:"required"`
	// ClassB is the endpoint whose traffic lands in the preset's class B.
	ClassB *EndpointConfig `toml:"class_b_endpoint" json:"class_b_endpoint" validate:"required"`
}

// DefaultStepTimeoutSeconds bounds a device-configuration step when the
// config leaves it unset.
const DefaultStepTimeoutSeconds = 10

// DefaultAPIListen is the operator API listen address when unset.
const DefaultAPIListen = "127.0.0.1:8480"

// StepTimeoutSecondsOrDefault returns the configured step timeout, falling
// back to the default.
func (c *Config) StepTimeoutSecondsOrDefault() int {
	if c.General == nil || c.General.StepTimeoutSeconds == 0 {
		return DefaultStepTimeoutSeconds
	}
	return c.General.StepTimeoutSeconds
}

// APIListenOrDefault returns the configured API listen address, falling back
// to the default.
func (c *Config) APIListenOrDefault() string {
	if c.General == nil || c.General.APIListen == "" {
		return DefaultAPIListen
	}
	return c.General.APIListen
}
