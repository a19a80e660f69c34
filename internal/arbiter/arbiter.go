// Package arbiter manages the shared-bottleneck bandwidth arbitration: an
// HTB class hierarchy on one link where two slices compete, with
// destination-address filters steering each slice's traffic into its class.
package arbiter

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/catalog"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/store"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/tc"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/utils"
)

// Class minors of the arbitration tree. 1:1 caps the total bandwidth, the
// competing classes borrow from it, 1:30 catches unclassified traffic.
const (
	parentMinor  = 1
	classAMinor  = 10
	classBMinor  = 20
	defaultMinor = 30
)

// builtinDefaultClass catches unclassified traffic when the preset does not
// configure its own default class.
var builtinDefaultClass = config.PresetClassConfig{Rate: "2mbit", Ceil: "5mbit", Prio: 3}

// Result is the outcome of a preset application.
type Result struct {
	Success  bool   `json:"success"`
	PresetID string `json:"preset_id"`
	Name     string `json:"name"`
	ClassAIP string `json:"class_a_ip"`
	ClassBIP string `json:"class_b_ip"`
	Message  string `json:"message"`
}

// Status combines the recorded arbitration state with the live bottleneck
// device state.
type Status struct {
	store.ArbiterState
	Bottleneck *tc.DeviceState `json:"bottleneck,omitempty"`
}

// Arbiter applies and clears arbitration presets on the shared bottleneck.
type Arbiter struct {
	catalog      *catalog.Catalog
	configurator tc.Configurator
	resolver     tc.AddressResolver
	rules        *store.RuleStore
	locks        *utils.KeyedMutex
	stepTimeout  time.Duration
}

// New creates an arbiter sharing the engine's rule store.
func New(cat *catalog.Catalog, configurator tc.Configurator, resolver tc.AddressResolver, rules *store.RuleStore, stepTimeout time.Duration) *Arbiter {
	return &Arbiter{
		catalog:      cat,
		configurator: configurator,
		resolver:     resolver,
		rules:        rules,
		locks:        utils.NewKeyedMutex(),
		stepTimeout:  stepTimeout,
	}
}

// ApplyPreset installs the preset's class hierarchy on the bottleneck.
//
// The competing endpoints' addresses are resolved first; a resolution
// failure rejects the request before the bottleneck is touched. Re-applying
// (the same preset or another) replaces the previous hierarchy.
func (a *Arbiter) ApplyPreset(ctx context.Context, presetID string) (*Result, error) {
	preset, err := a.catalog.Preset(presetID)
	if err != nil {
		return nil, err
	}
	bottleneck := a.catalog.Bottleneck()
	if bottleneck == nil {
		return nil, errors.NewConfigError("no bottleneck configured", nil)
	}

	ipA, err := a.resolveIP(ctx, bottleneck.ClassA.TC())
	if err != nil {
		return nil, err
	}
	ipB, err := a.resolveIP(ctx, bottleneck.ClassB.TC())
	if err != nil {
		return nil, err
	}

	spec, err := presetClassTree(preset, ipA, ipB)
	if err != nil {
		return nil, err
	}

	dev := bottleneck.Endpoint.TC()
	a.locks.Lock(dev.Key())
	defer a.locks.Unlock(dev.Key())

	if err := a.step(ctx, func(stepCtx context.Context) error {
		return a.configurator.Clear(stepCtx, dev)
	}); err != nil {
		log.Warnf("Pre-apply clear on %s failed: %v", dev, err)
	}

	if err := a.step(ctx, func(stepCtx context.Context) error {
		return a.configurator.ApplyClassTree(stepCtx, dev, spec)
	}); err != nil {
		a.rules.SetArbiter(store.ArbiterState{})
		return nil, err
	}

	a.rules.SetArbiter(store.ArbiterState{
		Active:    true,
		PresetID:  presetID,
		ClassAIP:  ipA.String(),
		ClassBIP:  ipB.String(),
		AppliedAt: time.Now(),
	})

	log.Infof("Arbitration preset %s applied on %s (A=%s, B=%s)", presetID, dev, ipA, ipB)
	return &Result{
		Success:  true,
		PresetID: presetID,
		Name:     preset.Name,
		ClassAIP: ipA.String(),
		ClassBIP: ipB.String(),
		Message:  fmt.Sprintf("Preset %s applied: total %s", presetID, preset.TotalRate),
	}, nil
}

// ClearPreset removes the arbitration hierarchy from the bottleneck.
// Clearing an unarbitrated bottleneck is success.
func (a *Arbiter) ClearPreset(ctx context.Context) error {
	bottleneck := a.catalog.Bottleneck()
	if bottleneck == nil {
		return errors.NewConfigError("no bottleneck configured", nil)
	}

	dev := bottleneck.Endpoint.TC()
	a.locks.Lock(dev.Key())
	defer a.locks.Unlock(dev.Key())

	if err := a.step(ctx, func(stepCtx context.Context) error {
		return a.configurator.Clear(stepCtx, dev)
	}); err != nil {
		return err
	}

	a.rules.SetArbiter(store.ArbiterState{})
	log.Infof("Arbitration cleared from %s", dev)
	return nil
}

// Status reads back the recorded arbitration state plus the bottleneck's
// live class tree.
func (a *Arbiter) Status(ctx context.Context) (*Status, error) {
	status := &Status{ArbiterState: a.rules.Arbiter()}

	bottleneck := a.catalog.Bottleneck()
	if bottleneck == nil {
		return status, nil
	}

	dev := bottleneck.Endpoint.TC()
	if err := a.step(ctx, func(stepCtx context.Context) error {
		state, introspectErr := a.configurator.Introspect(stepCtx, dev)
		status.Bottleneck = state
		return introspectErr
	}); err != nil {
		log.Warnf("Introspecting %s: %v", dev, err)
	}
	return status, nil
}

// resolveIP resolves a competing endpoint's address, rejecting the request
// when the endpoint cannot be identified.
func (a *Arbiter) resolveIP(ctx context.Context, dev tc.Device) (net.IP, error) {
	var ip net.IP
	err := a.step(ctx, func(stepCtx context.Context) error {
		var resolveErr error
		ip, resolveErr = a.resolver.ResolveIPv4(stepCtx, dev)
		return resolveErr
	})
	if err != nil {
		return nil, errors.NewCommandRejectedError(fmt.Sprintf("could not resolve address of %s", dev), err)
	}
	return ip, nil
}

func (a *Arbiter) step(ctx context.Context, fn func(ctx context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, a.stepTimeout)
	defer cancel()
	return fn(stepCtx)
}

// presetClassTree builds the three-class HTB hierarchy for a preset.
func presetClassTree(preset *config.PresetConfig, ipA, ipB net.IP) (tc.ClassTreeSpec, error) {
	total, err := qos.ParseRate(string(preset.TotalRate))
	if err != nil {
		return tc.ClassTreeSpec{}, errors.NewValidationError(fmt.Sprintf("invalid total_rate %q", preset.TotalRate), err)
	}

	defaultClass := builtinDefaultClass
	if preset.DefaultClass != nil {
		defaultClass = *preset.DefaultClass
	}

	spec := tc.ClassTreeSpec{
		DefaultClass: defaultMinor,
		Classes: []tc.ClassSpec{
			{Handle: parentMinor, Parent: 0, RateBps: total, CeilBps: total},
		},
		Filters: []tc.FilterSpec{
			{DstIP: ipA, ClassMinor: classAMinor},
			{DstIP: ipB, ClassMinor: classBMinor},
		},
	}

	for _, class := range []struct {
		minor uint16
		cfg   config.PresetClassConfig
	}{
		{classAMinor, *preset.ClassA},
		{classBMinor, *preset.ClassB},
		{defaultMinor, defaultClass},
	} {
		rate, err := qos.ParseRate(string(class.cfg.Rate))
		if err != nil {
			return tc.ClassTreeSpec{}, errors.NewValidationError(fmt.Sprintf("invalid class rate %q", class.cfg.Rate), err)
		}
		ceil, err := qos.ParseRate(string(class.cfg.Ceil))
		if err != nil {
			return tc.ClassTreeSpec{}, errors.NewValidationError(fmt.Sprintf("invalid class ceil %q", class.cfg.Ceil), err)
		}
		spec.Classes = append(spec.Classes, tc.ClassSpec{
			Handle:  class.minor,
			Parent:  parentMinor,
			RateBps: rate,
			CeilBps: ceil,
			Prio:    class.cfg.Prio,
		})
	}

	return spec, nil
}
