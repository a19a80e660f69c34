package qos

// Params is the full set of shaping parameters applied to a slice.
//
// BandwidthDown limits traffic towards the slice (policed at the ingress
// endpoint), BandwidthUp limits traffic from the slice (shaped at the egress
// and tunnel endpoints). Latency/jitter/loss are emulated with netem on the
// egress leaf. Priority orders profiles when several use cases compete for
// one slice; lower value wins. DSCP, when non-zero, marks outgoing slice
// traffic for downstream prioritization.
type Params struct {
	BandwidthDown Rate    `json:"bandwidth_down"`
	BandwidthUp   Rate    `json:"bandwidth_up"`
	LatencyMs     int     `json:"latency_ms"`
	JitterMs      int     `json:"jitter_ms"`
	LossPct       float64 `json:"loss_pct"`
	Priority      int     `json:"priority"`
	DSCP          int     `json:"dscp,omitempty"`
}

// Overrides is a partial parameter set. Any non-nil field replaces the
// corresponding profile field during resolution.
type Overrides struct {
	BandwidthDown *Rate    `json:"bandwidth_down,omitempty"`
	BandwidthUp   *Rate    `json:"bandwidth_up,omitempty"`
	LatencyMs     *int     `json:"latency_ms,omitempty"`
	JitterMs      *int     `json:"jitter_ms,omitempty"`
	LossPct       *float64 `json:"loss_pct,omitempty"`
	DSCP          *int     `json:"dscp,omitempty"`
}

// IsEmpty reports whether no override field is set.
func (o *Overrides) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.BandwidthDown == nil && o.BandwidthUp == nil &&
		o.LatencyMs == nil && o.JitterMs == nil && o.LossPct == nil && o.DSCP == nil
}

// DefaultParams returns the neutral parameter set used when no profile is
// given: effectively unrestricted bandwidth and no emulated impairments.
func DefaultParams() Params {
	return Params{
		BandwidthDown: "100mbit",
		BandwidthUp:   "50mbit",
		LatencyMs:     0,
		JitterMs:      0,
		LossPct:       0,
		Priority:      2,
	}
}

// Resolve produces the effective parameter set: base values overridden
// field-by-field by any explicitly supplied custom values.
func Resolve(base Params, overrides *Overrides) Params {
	resolved := base
	if overrides == nil {
		return resolved
	}
	if overrides.BandwidthDown != nil {
		resolved.BandwidthDown = *overrides.BandwidthDown
	}
	if overrides.BandwidthUp != nil {
		resolved.BandwidthUp = *overrides.BandwidthUp
	}
	if overrides.LatencyMs != nil {
		resolved.LatencyMs = *overrides.LatencyMs
	}
	if overrides.JitterMs != nil {
		resolved.JitterMs = *overrides.JitterMs
	}
	if overrides.LossPct != nil {
		resolved.LossPct = *overrides.LossPct
	}
	if overrides.DSCP != nil {
		resolved.DSCP = *overrides.DSCP
	}
	return resolved
}

// NeedsNetem reports whether the parameters require a netem stage
// (any non-zero latency, jitter or loss).
func (p Params) NeedsNetem() bool {
	return p.LatencyMs > 0 || p.JitterMs > 0 || p.LossPct > 0
}
