// Package mocks provides mock implementations for testing.
//
// This package should ONLY be imported in test files (_test.go).
// The Go toolchain will automatically exclude this package from production builds
// since it's not imported in any production code.
package mocks

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/tc"
)

// deviceConfig is the recorded configuration of one mock device.
type deviceConfig struct {
	classTree *tc.ClassTreeSpec
	policer   *tc.PolicerSpec
	netems    []tc.NetemSpec
}

// MockConfigurator is a stateful in-memory implementation of tc.Configurator.
//
// By default it records every applied spec per device key and synthesizes a
// plausible DeviceState on Introspect, so engine tests can assert on what
// reached the device layer. Any method can be overridden through its
// function field; call counters are always maintained.
type MockConfigurator struct {
	mu      sync.Mutex
	devices map[string]*deviceConfig

	// ApplyClassTreeFunc is called by ApplyClassTree if not nil
	ApplyClassTreeFunc func(ctx context.Context, dev tc.Device, spec tc.ClassTreeSpec) error

	// ApplyPolicerFunc is called by ApplyPolicer if not nil
	ApplyPolicerFunc func(ctx context.Context, dev tc.Device, spec tc.PolicerSpec) error

	// ApplyNetemFunc is called by ApplyNetem if not nil
	ApplyNetemFunc func(ctx context.Context, dev tc.Device, spec tc.NetemSpec) error

	// ClearFunc is called by Clear if not nil
	ClearFunc func(ctx context.Context, dev tc.Device) error

	// IntrospectFunc is called by Introspect if not nil
	IntrospectFunc func(ctx context.Context, dev tc.Device) (*tc.DeviceState, error)

	// Call counters, incremented on every call regardless of overrides.
	ApplyClassTreeCalls int
	ApplyPolicerCalls   int
	ApplyNetemCalls     int
	ClearCalls          int
	IntrospectCalls     int
}

var _ tc.Configurator = (*MockConfigurator)(nil)

// NewMockConfigurator creates a mock configurator with empty device state.
func NewMockConfigurator() *MockConfigurator {
	return &MockConfigurator{devices: make(map[string]*deviceConfig)}
}

func (m *MockConfigurator) device(dev tc.Device) *deviceConfig {
	if m.devices == nil {
		m.devices = make(map[string]*deviceConfig)
	}
	d, ok := m.devices[dev.Key()]
	if !ok {
		d = &deviceConfig{}
		m.devices[dev.Key()] = d
	}
	return d
}

// ApplyClassTree records the class tree for the device.
func (m *MockConfigurator) ApplyClassTree(ctx context.Context, dev tc.Device, spec tc.ClassTreeSpec) error {
	m.mu.Lock()
	m.ApplyClassTreeCalls++
	fn := m.ApplyClassTreeFunc
	if fn == nil {
		m.device(dev).classTree = &spec
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dev, spec)
	}
	return nil
}

// ApplyPolicer records the policer for the device.
func (m *MockConfigurator) ApplyPolicer(ctx context.Context, dev tc.Device, spec tc.PolicerSpec) error {
	m.mu.Lock()
	m.ApplyPolicerCalls++
	fn := m.ApplyPolicerFunc
	if fn == nil {
		m.device(dev).policer = &spec
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dev, spec)
	}
	return nil
}

// ApplyNetem records the netem stage for the device.
func (m *MockConfigurator) ApplyNetem(ctx context.Context, dev tc.Device, spec tc.NetemSpec) error {
	m.mu.Lock()
	m.ApplyNetemCalls++
	fn := m.ApplyNetemFunc
	if fn == nil {
		d := m.device(dev)
		d.netems = append(d.netems, spec)
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dev, spec)
	}
	return nil
}

// Clear drops all recorded configuration for the device. Clearing an
// unknown device is success, matching the production semantics.
func (m *MockConfigurator) Clear(ctx context.Context, dev tc.Device) error {
	m.mu.Lock()
	m.ClearCalls++
	fn := m.ClearFunc
	if fn == nil {
		delete(m.devices, dev.Key())
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dev)
	}
	return nil
}

// Introspect synthesizes a DeviceState from the recorded configuration.
func (m *MockConfigurator) Introspect(ctx context.Context, dev tc.Device) (*tc.DeviceState, error) {
	m.mu.Lock()
	m.IntrospectCalls++
	fn := m.IntrospectFunc
	var d *deviceConfig
	if fn == nil {
		d = m.devices[dev.Key()]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dev)
	}

	state := &tc.DeviceState{Device: dev}
	if d == nil {
		return state, nil
	}
	if d.classTree != nil {
		state.Qdiscs = append(state.Qdiscs, tc.QdiscState{Kind: "htb", Handle: "1:0", Parent: "root"})
		for _, cl := range d.classTree.Classes {
			state.Classes = append(state.Classes, tc.ClassState{
				Handle:  fmt.Sprintf("1:%d", cl.Handle),
				Parent:  fmt.Sprintf("1:%d", cl.Parent),
				RateBps: cl.RateBps,
				CeilBps: cl.CeilBps,
				Prio:    cl.Prio,
			})
		}
	}
	for _, n := range d.netems {
		state.Qdiscs = append(state.Qdiscs, tc.QdiscState{
			Kind:   "netem",
			Handle: "10:0",
			Parent: fmt.Sprintf("1:%d", n.ParentClass),
		})
	}
	if d.policer != nil {
		state.Qdiscs = append(state.Qdiscs, tc.QdiscState{Kind: "ingress", Handle: "ffff:0", Parent: "ingress"})
	}
	return state, nil
}

// ClassTree returns the last class tree applied to the device, or nil.
func (m *MockConfigurator) ClassTree(dev tc.Device) *tc.ClassTreeSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[dev.Key()]; ok {
		return d.classTree
	}
	return nil
}

// Policer returns the last policer applied to the device, or nil.
func (m *MockConfigurator) Policer(dev tc.Device) *tc.PolicerSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[dev.Key()]; ok {
		return d.policer
	}
	return nil
}

// Netems returns all netem stages applied to the device since its last clear.
func (m *MockConfigurator) Netems(dev tc.Device) []tc.NetemSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[dev.Key()]; ok {
		return append([]tc.NetemSpec(nil), d.netems...)
	}
	return nil
}

// ConfiguredDevices returns the keys of every device holding configuration.
func (m *MockConfigurator) ConfiguredDevices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.devices))
	for k := range m.devices {
		keys = append(keys, k)
	}
	return keys
}

// TotalCalls returns the sum of all mutating call counters.
func (m *MockConfigurator) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ApplyClassTreeCalls + m.ApplyPolicerCalls + m.ApplyNetemCalls + m.ClearCalls
}

// MockAddressResolver is a mock implementation of tc.AddressResolver.
//
// Addresses maps device keys to their IPv4 address. ResolveIPv4Func, if set,
// takes precedence.
type MockAddressResolver struct {
	mu        sync.Mutex
	Addresses map[string]net.IP

	// ResolveIPv4Func is called by ResolveIPv4 if not nil
	ResolveIPv4Func func(ctx context.Context, dev tc.Device) (net.IP, error)

	ResolveIPv4Calls int
}

var _ tc.AddressResolver = (*MockAddressResolver)(nil)

// NewMockAddressResolver creates a resolver with the given device addresses.
func NewMockAddressResolver(addresses map[string]net.IP) *MockAddressResolver {
	if addresses == nil {
		addresses = make(map[string]net.IP)
	}
	return &MockAddressResolver{Addresses: addresses}
}

// ResolveIPv4 returns the configured address for the device.
func (m *MockAddressResolver) ResolveIPv4(ctx context.Context, dev tc.Device) (net.IP, error) {
	m.mu.Lock()
	m.ResolveIPv4Calls++
	fn := m.ResolveIPv4Func
	ip := m.Addresses[dev.Key()]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dev)
	}
	if ip == nil {
		return nil, fmt.Errorf("no address configured for device %s", dev)
	}
	return ip, nil
}

// MockMarker is a mock implementation of tc.Marker that records the rule
// set currently ensured, keyed by rule string.
type MockMarker struct {
	mu    sync.Mutex
	rules map[string]tc.MarkingRule

	// EnsureRulesFunc is called by EnsureRules if not nil
	EnsureRulesFunc func(rules []tc.MarkingRule) error

	// RemoveRulesFunc is called by RemoveRules if not nil
	RemoveRulesFunc func(rules []tc.MarkingRule) error

	EnsureRulesCalls int
	RemoveRulesCalls int
}

var _ tc.Marker = (*MockMarker)(nil)

// NewMockMarker creates a marker with no active rules.
func NewMockMarker() *MockMarker {
	return &MockMarker{rules: make(map[string]tc.MarkingRule)}
}

// EnsureRules records the rules as present.
func (m *MockMarker) EnsureRules(rules []tc.MarkingRule) error {
	m.mu.Lock()
	m.EnsureRulesCalls++
	fn := m.EnsureRulesFunc
	if fn == nil {
		for _, r := range rules {
			m.rules[r.String()] = r
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(rules)
	}
	return nil
}

// RemoveRules records the rules as absent.
func (m *MockMarker) RemoveRules(rules []tc.MarkingRule) error {
	m.mu.Lock()
	m.RemoveRulesCalls++
	fn := m.RemoveRulesFunc
	if fn == nil {
		for _, r := range rules {
			delete(m.rules, r.String())
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(rules)
	}
	return nil
}

// ActiveRules returns how many rules are currently ensured.
func (m *MockMarker) ActiveRules() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rules)
}
