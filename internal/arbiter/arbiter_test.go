package arbiter

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/catalog"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/mocks"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/store"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/tc"
)

func bottleneckDev() tc.Device {
	return tc.Device{Name: "eth0", Host: "edge", Netns: "/run/netns/edge"}
}

func testResolver() *mocks.MockAddressResolver {
	return mocks.NewMockAddressResolver(map[string]net.IP{
		(tc.Device{Name: "eth0", Netns: "/run/netns/ue1"}).Key(): net.ParseIP("172.20.0.5").To4(),
		(tc.Device{Name: "eth0", Netns: "/run/netns/ue2"}).Key(): net.ParseIP("172.20.0.6").To4(),
	})
}

func newTestArbiter(t *testing.T) (*Arbiter, *mocks.MockConfigurator, *store.RuleStore) {
	t.Helper()
	cfg := config.DefaultConfig()
	configurator := mocks.NewMockConfigurator()
	rules := store.NewRuleStore()
	arb := New(catalog.New(cfg), configurator, testResolver(), rules, time.Second)
	return arb, configurator, rules
}

func TestApplyPreset_BuildsThreeTierTree(t *testing.T) {
	arb, configurator, rules := newTestArbiter(t)

	result, err := arb.ApplyPreset(context.Background(), "iot-first")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got %+v", result)
	}

	tree := configurator.ClassTree(bottleneckDev())
	if tree == nil {
		t.Fatal("Expected class tree on the bottleneck")
	}
	if tree.DefaultClass != 30 {
		t.Errorf("Expected default class 30, got %d", tree.DefaultClass)
	}
	if len(tree.Classes) != 4 {
		t.Fatalf("Expected 4 classes (parent + A + B + default), got %d", len(tree.Classes))
	}

	byHandle := make(map[uint16]tc.ClassSpec)
	for _, cl := range tree.Classes {
		byHandle[cl.Handle] = cl
	}

	parent := byHandle[1]
	if parent.RateBps != 20_000_000 || parent.CeilBps != 20_000_000 {
		t.Errorf("Expected 20mbit parent cap, got %+v", parent)
	}
	classA := byHandle[10]
	if classA.RateBps != 14_000_000 || classA.CeilBps != 18_000_000 || classA.Prio != 1 {
		t.Errorf("Expected class A 14/18mbit prio 1, got %+v", classA)
	}
	classB := byHandle[20]
	if classB.RateBps != 4_000_000 || classB.CeilBps != 15_000_000 || classB.Prio != 2 {
		t.Errorf("Expected class B 4/15mbit prio 2, got %+v", classB)
	}
	def := byHandle[30]
	if def.RateBps != 2_000_000 || def.CeilBps != 5_000_000 || def.Prio != 3 {
		t.Errorf("Expected default class 2/5mbit prio 3, got %+v", def)
	}

	if len(tree.Filters) != 2 {
		t.Fatalf("Expected 2 filters, got %d", len(tree.Filters))
	}
	if tree.Filters[0].DstIP.String() != "172.20.0.5" || tree.Filters[0].ClassMinor != 10 {
		t.Errorf("Expected class A filter for 172.20.0.5, got %+v", tree.Filters[0])
	}
	if tree.Filters[1].DstIP.String() != "172.20.0.6" || tree.Filters[1].ClassMinor != 20 {
		t.Errorf("Expected class B filter for 172.20.0.6, got %+v", tree.Filters[1])
	}

	state := rules.Arbiter()
	if !state.Active || state.PresetID != "iot-first" {
		t.Errorf("Expected recorded iot-first state, got %+v", state)
	}
}

func TestApplyPreset_ReapplyReplacesHierarchy(t *testing.T) {
	arb, configurator, rules := newTestArbiter(t)

	if _, err := arb.ApplyPreset(context.Background(), "iot-first"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := arb.ApplyPreset(context.Background(), "vehicle-first"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	tree := configurator.ClassTree(bottleneckDev())
	var classA tc.ClassSpec
	for _, cl := range tree.Classes {
		if cl.Handle == 10 {
			classA = cl
		}
	}
	// vehicle-first demotes class A to 4mbit prio 2.
	if classA.RateBps != 4_000_000 || classA.Prio != 2 {
		t.Errorf("Expected vehicle-first class A values, got %+v", classA)
	}
	if configurator.ClearCalls != 2 {
		t.Errorf("Expected a clear before each apply, got %d", configurator.ClearCalls)
	}
	if rules.Arbiter().PresetID != "vehicle-first" {
		t.Errorf("Expected recorded preset vehicle-first, got %s", rules.Arbiter().PresetID)
	}
}

func TestApplyPreset_UnknownPreset(t *testing.T) {
	arb, configurator, _ := newTestArbiter(t)

	if _, err := arb.ApplyPreset(context.Background(), "nope"); err == nil {
		t.Error("Expected error, got none")
	} else if !errors.IsCode(err, errors.ErrCodeUnknownIdentifier) {
		t.Errorf("Expected UNKNOWN_IDENTIFIER, got: %v", err)
	}
	if configurator.TotalCalls() != 0 {
		t.Error("Expected zero device calls")
	}
}

func TestApplyPreset_ResolutionFailureRejectsBeforeMutation(t *testing.T) {
	cfg := config.DefaultConfig()
	configurator := mocks.NewMockConfigurator()
	// Resolver knows no addresses at all.
	arb := New(catalog.New(cfg), configurator, mocks.NewMockAddressResolver(nil), store.NewRuleStore(), time.Second)

	_, err := arb.ApplyPreset(context.Background(), "iot-first")
	if err == nil {
		t.Fatal("Expected error, got none")
	}
	if !errors.IsCode(err, errors.ErrCodeCommandRejected) {
		t.Errorf("Expected COMMAND_REJECTED, got: %v", err)
	}
	if configurator.TotalCalls() != 0 {
		t.Errorf("Expected bottleneck untouched, got %d device calls", configurator.TotalCalls())
	}
}

func TestClearPreset(t *testing.T) {
	arb, configurator, rules := newTestArbiter(t)

	if _, err := arb.ApplyPreset(context.Background(), "equal"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := arb.ClearPreset(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if configurator.ClassTree(bottleneckDev()) != nil {
		t.Error("Expected bottleneck tree removed")
	}
	if rules.Arbiter().Active {
		t.Error("Expected arbitration state reset")
	}

	// Clearing again is a no-op.
	if err := arb.ClearPreset(context.Background()); err != nil {
		t.Errorf("Expected clearing an unarbitrated bottleneck to succeed, got: %v", err)
	}
}

func TestStatus(t *testing.T) {
	arb, _, _ := newTestArbiter(t)

	status, err := arb.Status(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if status.Active {
		t.Error("Expected inactive arbitration initially")
	}
	if status.Bottleneck.IsShaped() {
		t.Error("Expected unshaped bottleneck initially")
	}

	if _, err := arb.ApplyPreset(context.Background(), "emergency"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	status, err = arb.Status(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !status.Active || status.PresetID != "emergency" {
		t.Errorf("Expected active emergency state, got %+v", status.ArbiterState)
	}
	if !status.Bottleneck.IsShaped() {
		t.Error("Expected shaped bottleneck after apply")
	}
}
