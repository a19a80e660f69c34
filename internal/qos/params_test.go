package qos

import "testing"

func baseParams() Params {
	return Params{
		BandwidthDown: "5mbit",
		BandwidthUp:   "2mbit",
		LatencyMs:     50,
		JitterMs:      10,
		LossPct:       0,
		Priority:      3,
	}
}

func TestResolve_NoOverrides(t *testing.T) {
	base := baseParams()

	resolved := Resolve(base, nil)
	if resolved != base {
		t.Errorf("Expected resolved params to equal base, got %+v", resolved)
	}

	resolved = Resolve(base, &Overrides{})
	if resolved != base {
		t.Errorf("Expected resolved params with empty overrides to equal base, got %+v", resolved)
	}
}

func TestResolve_OverridePrecedence(t *testing.T) {
	base := baseParams()

	down := Rate("1mbit")
	latency := 200
	loss := 5.0
	resolved := Resolve(base, &Overrides{
		BandwidthDown: &down,
		LatencyMs:     &latency,
		LossPct:       &loss,
	})

	// Overridden fields carry the override values.
	if resolved.BandwidthDown != down {
		t.Errorf("Expected bandwidth_down %s, got %s", down, resolved.BandwidthDown)
	}
	if resolved.LatencyMs != latency {
		t.Errorf("Expected latency %d, got %d", latency, resolved.LatencyMs)
	}
	if resolved.LossPct != loss {
		t.Errorf("Expected loss %f, got %f", loss, resolved.LossPct)
	}

	// Every field not overridden keeps the base value.
	if resolved.BandwidthUp != base.BandwidthUp {
		t.Errorf("Expected bandwidth_up %s, got %s", base.BandwidthUp, resolved.BandwidthUp)
	}
	if resolved.JitterMs != base.JitterMs {
		t.Errorf("Expected jitter %d, got %d", base.JitterMs, resolved.JitterMs)
	}
	if resolved.Priority != base.Priority {
		t.Errorf("Expected priority %d, got %d", base.Priority, resolved.Priority)
	}
}

func TestResolve_ZeroValueOverrides(t *testing.T) {
	base := baseParams()

	// An explicit zero is an override, not "unset".
	zero := 0
	resolved := Resolve(base, &Overrides{LatencyMs: &zero, JitterMs: &zero})
	if resolved.LatencyMs != 0 || resolved.JitterMs != 0 {
		t.Errorf("Expected explicit zero overrides to apply, got latency=%d jitter=%d",
			resolved.LatencyMs, resolved.JitterMs)
	}
}

func TestOverrides_IsEmpty(t *testing.T) {
	var nilOverrides *Overrides
	if !nilOverrides.IsEmpty() {
		t.Error("Expected nil overrides to be empty")
	}
	if !(&Overrides{}).IsEmpty() {
		t.Error("Expected zero overrides to be empty")
	}
	up := Rate("1mbit")
	if (&Overrides{BandwidthUp: &up}).IsEmpty() {
		t.Error("Expected non-zero overrides to be non-empty")
	}
}

func TestParams_NeedsNetem(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected bool
	}{
		{"no impairments", Params{}, false},
		{"latency only", Params{LatencyMs: 5}, true},
		{"jitter only", Params{JitterMs: 2}, true},
		{"loss only", Params{LossPct: 1.5}, true},
	}

	for _, tt := range tests {
		if got := tt.params.NeedsNetem(); got != tt.expected {
			t.Errorf("%s: NeedsNetem() = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if !p.BandwidthDown.IsValid() || !p.BandwidthUp.IsValid() {
		t.Error("Expected default bandwidth expressions to be valid")
	}
	if p.NeedsNetem() {
		t.Error("Expected default params to have no impairments")
	}
}
