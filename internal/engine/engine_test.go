package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/catalog"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/mocks"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/store"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/tc"
)

func newTestEngine(t *testing.T) (*Engine, *mocks.MockConfigurator, *mocks.MockMarker) {
	t.Helper()
	cfg := config.DefaultConfig()
	configurator := mocks.NewMockConfigurator()
	marker := mocks.NewMockMarker()
	eng := New(catalog.New(cfg), configurator, marker, store.NewRuleStore(), time.Second)
	return eng, configurator, marker
}

func slice1Access() tc.Device {
	return tc.Device{Name: "eth0", Host: "ue1", Netns: "/run/netns/ue1"}
}

func slice1Tunnel() tc.Device {
	return tc.Device{Name: "uesimtun0", Host: "ue1", Netns: "/run/netns/ue1"}
}

func slice1Core() tc.Device {
	return tc.Device{Name: "ogstun", Host: "upf1", Netns: "/run/netns/upf1"}
}

func TestApply_UnknownIdentifiersTouchNoDevice(t *testing.T) {
	eng, configurator, marker := newTestEngine(t)

	if _, err := eng.Apply(context.Background(), "slice99", "iot-default", nil); err == nil {
		t.Error("Expected error for unknown slice, got none")
	} else if !errors.IsCode(err, errors.ErrCodeUnknownIdentifier) {
		t.Errorf("Expected UNKNOWN_IDENTIFIER, got: %v", err)
	}

	if _, err := eng.Apply(context.Background(), "slice1", "no-such-profile", nil); err == nil {
		t.Error("Expected error for unknown profile, got none")
	} else if !errors.IsCode(err, errors.ErrCodeUnknownIdentifier) {
		t.Errorf("Expected UNKNOWN_IDENTIFIER, got: %v", err)
	}

	if configurator.TotalCalls() != 0 {
		t.Errorf("Expected zero device calls, got %d", configurator.TotalCalls())
	}
	if marker.EnsureRulesCalls != 0 {
		t.Error("Expected no marking calls")
	}
	if _, ok := eng.Rules().Get("slice1"); ok {
		t.Error("Expected no rule record after rejected apply")
	}
}

func TestApply_ProfileShapesAllEndpoints(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	result, err := eng.Apply(context.Background(), "slice1", "iot-default", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got: %+v", result)
	}

	// Downlink policed at the access interface.
	policer := configurator.Policer(slice1Access())
	if policer == nil {
		t.Fatal("Expected policer on access interface")
	}
	if policer.RateBps != 5_000_000 {
		t.Errorf("Expected policer at 5mbit, got %d", policer.RateBps)
	}

	// Uplink shaped at the access interface.
	accessTree := configurator.ClassTree(slice1Access())
	if accessTree == nil {
		t.Fatal("Expected class tree on access interface")
	}
	if accessTree.Classes[0].RateBps != 2_000_000 {
		t.Errorf("Expected access leaf at 2mbit, got %d", accessTree.Classes[0].RateBps)
	}
	if accessTree.Classes[0].Prio != 3 {
		t.Errorf("Expected access leaf prio 3, got %d", accessTree.Classes[0].Prio)
	}

	// Impairments emulated under the access and core leaves.
	netems := configurator.Netems(slice1Access())
	if len(netems) != 1 {
		t.Fatalf("Expected 1 netem on access interface, got %d", len(netems))
	}
	if netems[0].DelayMs != 50 || netems[0].JitterMs != 10 {
		t.Errorf("Expected 50ms/10ms netem, got %+v", netems[0])
	}
	if len(configurator.Netems(slice1Core())) != 1 {
		t.Error("Expected netem on core interface")
	}

	// Tunnel shaped for uplink, without impairments (they already apply at
	// the access leaf).
	tunnelTree := configurator.ClassTree(slice1Tunnel())
	if tunnelTree == nil {
		t.Fatal("Expected class tree on tunnel interface")
	}
	if tunnelTree.Classes[0].RateBps != 2_000_000 {
		t.Errorf("Expected tunnel leaf at 2mbit, got %d", tunnelTree.Classes[0].RateBps)
	}
	if len(configurator.Netems(slice1Tunnel())) != 0 {
		t.Error("Expected no netem on tunnel interface")
	}

	// Core shaped at the downlink rate.
	coreTree := configurator.ClassTree(slice1Core())
	if coreTree == nil {
		t.Fatal("Expected class tree on core interface")
	}
	if coreTree.Classes[0].RateBps != 5_000_000 {
		t.Errorf("Expected core leaf at 5mbit, got %d", coreTree.Classes[0].RateBps)
	}

	rule, ok := eng.Rules().Get("slice1")
	if !ok {
		t.Fatal("Expected rule record after apply")
	}
	if rule.ProfileID != "iot-default" {
		t.Errorf("Expected recorded profile iot-default, got %s", rule.ProfileID)
	}
}

func TestApply_NoProfileUsesNeutralDefaults(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	result, err := eng.Apply(context.Background(), "slice1", "", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Params.BandwidthDown != "100mbit" || result.Params.BandwidthUp != "50mbit" {
		t.Errorf("Expected neutral defaults, got %+v", result.Params)
	}
	if len(configurator.Netems(slice1Access())) != 0 {
		t.Error("Expected no netem for neutral defaults")
	}
}

func TestApply_OverridesTakePrecedence(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	down := qos.Rate("1mbit")
	loss := 2.5
	result, err := eng.Apply(context.Background(), "slice1", "embb", &qos.Overrides{
		BandwidthDown: &down,
		LossPct:       &loss,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Params.BandwidthDown != down {
		t.Errorf("Expected overridden bandwidth_down, got %s", result.Params.BandwidthDown)
	}
	// Non-overridden fields keep the profile values.
	if result.Params.BandwidthUp != "50mbit" || result.Params.LatencyMs != 10 {
		t.Errorf("Expected embb values for non-overridden fields, got %+v", result.Params)
	}

	policer := configurator.Policer(slice1Access())
	if policer == nil || policer.RateBps != 1_000_000 {
		t.Errorf("Expected policer at overridden 1mbit, got %+v", policer)
	}
	netems := configurator.Netems(slice1Access())
	if len(netems) != 1 || netems[0].LossPct != 2.5 {
		t.Errorf("Expected netem with overridden loss, got %+v", netems)
	}
}

func TestApply_InvalidOverrideRejectedBeforeDevices(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	bad := qos.Rate("warp-speed")
	_, err := eng.Apply(context.Background(), "slice1", "iot-default", &qos.Overrides{BandwidthDown: &bad})
	if err == nil {
		t.Fatal("Expected validation error, got none")
	}
	if !errors.IsCode(err, errors.ErrCodeValidation) {
		t.Errorf("Expected VALIDATION_ERROR, got: %v", err)
	}
	if configurator.TotalCalls() != 0 {
		t.Errorf("Expected zero device calls, got %d", configurator.TotalCalls())
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	for i := 0; i < 3; i++ {
		if _, err := eng.Apply(context.Background(), "slice1", "degraded", nil); err != nil {
			t.Fatalf("Apply %d: expected no error, got: %v", i, err)
		}
	}

	// Re-applies clear before adding, so each device holds exactly one
	// generation of configuration.
	if got := len(configurator.Netems(slice1Access())); got != 1 {
		t.Errorf("Expected exactly 1 netem after re-applies, got %d", got)
	}
	if configurator.ClearCalls < 3 {
		t.Errorf("Expected a clear pass before each apply, got %d clear calls", configurator.ClearCalls)
	}
}

func TestApply_PartialFailureIsRecorded(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	configurator.ApplyNetemFunc = func(ctx context.Context, dev tc.Device, spec tc.NetemSpec) error {
		return errors.NewCommandRejectedError("netem refused", nil)
	}

	result, err := eng.Apply(context.Background(), "slice1", "iot-default", nil)
	if err == nil {
		t.Fatal("Expected partial apply error, got none")
	}
	if !errors.IsCode(err, errors.ErrCodePartialApply) {
		t.Errorf("Expected PARTIAL_APPLY_FAILURE, got: %v", err)
	}
	if result == nil || result.Success {
		t.Fatalf("Expected unsuccessful result, got %+v", result)
	}

	var failed int
	for _, step := range result.Steps {
		if !step.OK {
			failed++
		}
	}
	if failed == 0 {
		t.Error("Expected at least one failed step in the result")
	}

	// The record reflects the attempt even though some steps failed.
	if _, ok := eng.Rules().Get("slice1"); !ok {
		t.Error("Expected rule record after partial apply")
	}
}

func TestApply_StepTimeoutReportsUnreachable(t *testing.T) {
	cfg := config.DefaultConfig()
	configurator := mocks.NewMockConfigurator()
	configurator.ApplyPolicerFunc = func(ctx context.Context, dev tc.Device, spec tc.PolicerSpec) error {
		<-ctx.Done()
		return errors.NewEndpointUnreachableError("policer install timed out", ctx.Err())
	}
	eng := New(catalog.New(cfg), configurator, mocks.NewMockMarker(), store.NewRuleStore(), 10*time.Millisecond)

	result, err := eng.Apply(context.Background(), "slice1", "iot-default", nil)
	if err == nil {
		t.Fatal("Expected partial apply error, got none")
	}
	if result.Steps[0].OK {
		t.Error("Expected policer step to fail")
	}
	if !strings.Contains(result.Steps[0].Error, string(errors.ErrCodeEndpointUnreachable)) {
		t.Errorf("Expected unreachable step error, got: %s", result.Steps[0].Error)
	}
}

func TestApply_DSCPMarking(t *testing.T) {
	eng, _, marker := newTestEngine(t)

	if _, err := eng.Apply(context.Background(), "slice2", "emergency", nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if marker.EnsureRulesCalls != 1 {
		t.Errorf("Expected 1 marking call, got %d", marker.EnsureRulesCalls)
	}
	if marker.ActiveRules() == 0 {
		t.Error("Expected active marking rules after apply")
	}

	if _, err := eng.Clear(context.Background(), "slice2"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if marker.ActiveRules() != 0 {
		t.Error("Expected marking rules removed after clear")
	}
}

func TestApply_ProfileChangeRemovesOldMarking(t *testing.T) {
	eng, _, marker := newTestEngine(t)

	// emergency marks slice2 traffic with DSCP 46; iot-default does not
	// mark at all. Switching profiles must take the old rule with it.
	if _, err := eng.Apply(context.Background(), "slice2", "emergency", nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if marker.ActiveRules() == 0 {
		t.Fatal("Expected active marking rules after emergency apply")
	}

	if _, err := eng.Apply(context.Background(), "slice2", "iot-default", nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := marker.ActiveRules(); got != 0 {
		t.Errorf("Expected old marking rule removed on re-apply, %d still active", got)
	}
	if marker.RemoveRulesCalls == 0 {
		t.Error("Expected an unmarking call during re-apply")
	}

	if _, err := eng.Clear(context.Background(), "slice2"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := marker.ActiveRules(); got != 0 {
		t.Errorf("Expected no marking rules after clear, %d still active", got)
	}
}

func TestClear_RemovesEverything(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	if _, err := eng.Apply(context.Background(), "slice1", "iot-default", nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	result, err := eng.Clear(context.Background(), "slice1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Success {
		t.Errorf("Expected successful clear, got %+v", result)
	}

	if len(configurator.ConfiguredDevices()) != 0 {
		t.Errorf("Expected no configured devices, got %v", configurator.ConfiguredDevices())
	}
	if _, ok := eng.Rules().Get("slice1"); ok {
		t.Error("Expected rule record removed after clear")
	}
}

func TestClear_UnshapedSliceIsSuccess(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	result, err := eng.Clear(context.Background(), "slice3")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Success {
		t.Errorf("Expected success clearing an unshaped slice, got %+v", result)
	}
}

func TestClear_UnknownSlice(t *testing.T) {
	eng, configurator, _ := newTestEngine(t)

	if _, err := eng.Clear(context.Background(), "slice99"); err == nil {
		t.Error("Expected error, got none")
	} else if !errors.IsCode(err, errors.ErrCodeUnknownIdentifier) {
		t.Errorf("Expected UNKNOWN_IDENTIFIER, got: %v", err)
	}
	if configurator.TotalCalls() != 0 {
		t.Error("Expected zero device calls")
	}
}

func TestClearAll_CoversEverySlice(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	for _, sliceID := range []string{"slice1", "slice2"} {
		if _, err := eng.Apply(context.Background(), sliceID, "iot-default", nil); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	results := eng.ClearAll(context.Background())
	if len(results) != 3 {
		t.Errorf("Expected results for 3 slices, got %d", len(results))
	}
	if len(eng.Rules().All()) != 0 {
		t.Error("Expected no rule records after ClearAll")
	}
}

func TestSliceStatus(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	status, err := eng.SliceStatus(context.Background(), "slice1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if status.ActiveRule != nil {
		t.Error("Expected no active rule before apply")
	}
	if len(status.Endpoints) != 3 {
		t.Fatalf("Expected 3 endpoint states, got %d", len(status.Endpoints))
	}
	for _, ep := range status.Endpoints {
		if ep.IsShaped() {
			t.Errorf("Expected %s to be unshaped", ep.Device)
		}
	}

	if _, err := eng.Apply(context.Background(), "slice1", "iot-default", nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	status, err = eng.SliceStatus(context.Background(), "slice1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if status.ActiveRule == nil || status.ActiveRule.ProfileID != "iot-default" {
		t.Errorf("Expected active rule for iot-default, got %+v", status.ActiveRule)
	}
	if !status.Endpoints[0].IsShaped() {
		t.Error("Expected access endpoint to be shaped after apply")
	}
}

func TestFullStatus(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	if _, err := eng.Apply(context.Background(), "slice2", "vehicle-default", nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	status := eng.FullStatus(context.Background())
	if len(status.Slices) != 3 {
		t.Errorf("Expected status for 3 slices, got %d", len(status.Slices))
	}
	if status.Slices["slice2"].ActiveRule == nil {
		t.Error("Expected active rule for slice2")
	}
	if status.Slices["slice1"].ActiveRule != nil {
		t.Error("Expected no active rule for slice1")
	}
	if status.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
}
