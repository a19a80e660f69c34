// Package engine orchestrates per-slice QoS application: parameter
// resolution, idempotent re-apply, per-step timeouts and the record of
// active rules. Devices are reached through the tc.Configurator capability,
// never directly.
package engine

import (
	"context"
	"fmt"
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

// leafClass is the HTB leaf every per-slice tree shapes traffic into.
const leafClass = 10

// StepResult reports the outcome of one device-configuration step.
type StepResult struct {
	Target string `json:"target"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// ApplyResult is the outcome of one apply operation. Success is true only
// when every step succeeded; the active rule is recorded either way so the
// operator can see what was attempted.
type ApplyResult struct {
	Success   bool         `json:"success"`
	SliceID   string       `json:"slice_id"`
	ProfileID string       `json:"profile_id,omitempty"`
	Params    qos.Params   `json:"params"`
	Steps     []StepResult `json:"steps"`
	Message   string       `json:"message"`
}

// ClearResult is the outcome of one clear operation.
type ClearResult struct {
	Success bool         `json:"success"`
	SliceID string       `json:"slice_id"`
	Steps   []StepResult `json:"steps"`
	Message string       `json:"message"`
}

// SliceStatus combines the console's rule record with the live device state.
type SliceStatus struct {
	SliceID    string            `json:"slice_id"`
	ActiveRule *store.ActiveRule `json:"active_rule,omitempty"`
	Endpoints  []*tc.DeviceState `json:"endpoints"`
}

// Status is the full transport status across slices.
type Status struct {
	Slices    map[string]*SliceStatus `json:"slices"`
	Arbiter   store.ArbiterState      `json:"arbiter"`
	Timestamp time.Time               `json:"timestamp"`
}

// Engine applies, clears and reports per-slice QoS state.
type Engine struct {
	catalog      *catalog.Catalog
	configurator tc.Configurator
	marker       tc.Marker
	rules        *store.RuleStore
	locks        *utils.KeyedMutex
	stepTimeout  time.Duration
}

// New creates an engine. stepTimeout bounds every individual device step.
func New(cat *catalog.Catalog, configurator tc.Configurator, marker tc.Marker, rules *store.RuleStore, stepTimeout time.Duration) *Engine {
	return &Engine{
		catalog:      cat,
		configurator: configurator,
		marker:       marker,
		rules:        rules,
		locks:        utils.NewKeyedMutex(),
		stepTimeout:  stepTimeout,
	}
}

// Rules exposes the engine's rule record for status aggregation.
func (e *Engine) Rules() *store.RuleStore {
	return e.rules
}

// Apply shapes a slice with the given profile and optional overrides.
//
// Identifiers and parameters are validated before any device is touched.
// The previous configuration is cleared first, so re-applying is idempotent.
// Steps after a failed one are still attempted; the result records the
// outcome of each, and a partial failure is reported as an error alongside
// the result.
func (e *Engine) Apply(ctx context.Context, sliceID, profileID string, overrides *qos.Overrides) (*ApplyResult, error) {
	slice, err := e.catalog.Slice(sliceID)
	if err != nil {
		return nil, err
	}

	params := qos.DefaultParams()
	if profileID != "" {
		profile, err := e.catalog.Profile(profileID)
		if err != nil {
			return nil, err
		}
		params = profile.Params()
	}
	params = qos.Resolve(params, overrides)

	downBps, err := params.BandwidthDown.BitsPerSecond()
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid bandwidth_down %q", params.BandwidthDown), err)
	}
	upBps, err := params.BandwidthUp.BitsPerSecond()
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid bandwidth_up %q", params.BandwidthUp), err)
	}

	e.locks.Lock(sliceID)
	defer e.locks.Unlock(sliceID)

	// Re-applying replaces the previous configuration. A failed removal on
	// one endpoint must not stop the apply; the endpoint's add step will
	// surface the real problem.
	for _, ep := range sliceEndpoints(slice) {
		if err := e.step(ctx, func(stepCtx context.Context) error {
			return e.configurator.Clear(stepCtx, ep.dev)
		}); err != nil {
			log.Warnf("Pre-apply clear on %s failed: %v", ep.dev, err)
		}
	}

	// Marking rules carry the DSCP value of the rule that installed them, so
	// the previous rule's value is needed to remove them. Without this, a
	// profile change away from a marking profile would orphan the old rule.
	if prev, ok := e.rules.Get(sliceID); ok && prev.Params.DSCP > 0 {
		if err := e.marker.RemoveRules(markingRules(slice, prev.Params.DSCP)); err != nil {
			log.Warnf("Pre-apply unmarking on %s failed: %v", sliceID, err)
		}
	}

	result := &ApplyResult{SliceID: sliceID, ProfileID: profileID, Params: params}

	// Downlink policing at the access interface. Inbound traffic cannot be
	// queued there, so excess is dropped.
	access := slice.Access.TC()
	result.record(fmt.Sprintf("%s policer", access), e.step(ctx, func(stepCtx context.Context) error {
		return e.configurator.ApplyPolicer(stepCtx, access, tc.PolicerSpec{RateBps: downBps})
	}))

	// Uplink shaping at the access interface, with impairment emulation
	// stacked under the leaf when the profile asks for it.
	result.record(fmt.Sprintf("%s shaper", access), e.applyLeaf(ctx, access, upBps, params))

	// The GTP tunnel interface carries the real user-plane traffic; shape
	// uplink there as well.
	if slice.Tunnel != nil {
		tunnel := slice.Tunnel.TC()
		result.record(fmt.Sprintf("%s shaper", tunnel), e.applyLeaf(ctx, tunnel, upBps, qos.Params{Priority: params.Priority}))
	}

	// Downlink shaping at the core-side tunnel interface.
	core := slice.Core.TC()
	result.record(fmt.Sprintf("%s shaper", core), e.applyLeaf(ctx, core, downBps, params))

	if params.DSCP > 0 {
		rules := markingRules(slice, params.DSCP)
		result.record(fmt.Sprintf("%s dscp marking", core), e.marker.EnsureRules(rules))
	}

	// Record the rule regardless of step outcomes: the devices may be
	// partially configured and the operator needs to see what was attempted.
	e.rules.Put(store.ActiveRule{
		SliceID:   sliceID,
		ProfileID: profileID,
		Params:    params,
		AppliedAt: time.Now(),
	})

	result.Success = allOK(result.Steps)
	if !result.Success {
		result.Message = "Some rules failed to apply"
		return result, errors.NewPartialApplyError(fmt.Sprintf("apply on %s partially failed", sliceID))
	}
	result.Message = fmt.Sprintf("QoS applied to %s: down %s, up %s, latency %dms",
		sliceID, params.BandwidthDown, params.BandwidthUp, params.LatencyMs)
	log.Infof("%s", result.Message)
	return result, nil
}

// applyLeaf installs a single-leaf HTB tree on dev and, when the parameters
// carry impairments, a netem stage under the leaf.
func (e *Engine) applyLeaf(ctx context.Context, dev tc.Device, rateBps uint64, params qos.Params) error {
	spec := tc.ClassTreeSpec{
		DefaultClass: leafClass,
		Classes: []tc.ClassSpec{{
			Handle:  leafClass,
			RateBps: rateBps,
			CeilBps: rateBps,
			Prio:    uint32(params.Priority),
		}},
	}
	if err := e.step(ctx, func(stepCtx context.Context) error {
		return e.configurator.ApplyClassTree(stepCtx, dev, spec)
	}); err != nil {
		return err
	}

	if !params.NeedsNetem() {
		return nil
	}
	return e.step(ctx, func(stepCtx context.Context) error {
		return e.configurator.ApplyNetem(stepCtx, dev, tc.NetemSpec{
			ParentClass: leafClass,
			DelayMs:     params.LatencyMs,
			JitterMs:    params.JitterMs,
			LossPct:     params.LossPct,
		})
	})
}

// Clear removes every managed rule from a slice's endpoints and drops the
// rule record. Clearing an unshaped slice is success.
func (e *Engine) Clear(ctx context.Context, sliceID string) (*ClearResult, error) {
	slice, err := e.catalog.Slice(sliceID)
	if err != nil {
		return nil, err
	}

	e.locks.Lock(sliceID)
	defer e.locks.Unlock(sliceID)

	result := &ClearResult{SliceID: sliceID}
	for _, ep := range sliceEndpoints(slice) {
		dev := ep.dev
		result.Steps = append(result.Steps, toStep(fmt.Sprintf("%s clear", dev), e.step(ctx, func(stepCtx context.Context) error {
			return e.configurator.Clear(stepCtx, dev)
		})))
	}

	// Marking rules embed the DSCP value that installed them, so removal
	// expands them with the recorded rule's value. Apply keeps the record in
	// sync with whatever is installed.
	if rule, ok := e.rules.Get(sliceID); ok && rule.Params.DSCP > 0 {
		result.Steps = append(result.Steps, toStep("dscp unmarking",
			e.marker.RemoveRules(markingRules(slice, rule.Params.DSCP))))
	}

	e.rules.Delete(sliceID)

	result.Success = allOK(result.Steps)
	if result.Success {
		result.Message = fmt.Sprintf("Cleared rules on %s", sliceID)
	} else {
		result.Message = "Some rules failed to clear"
		return result, errors.NewPartialApplyError(fmt.Sprintf("clear on %s partially failed", sliceID))
	}
	return result, nil
}

// ClearAll clears every configured slice. Failures on one slice do not stop
// the others.
func (e *Engine) ClearAll(ctx context.Context) map[string]*ClearResult {
	results := make(map[string]*ClearResult, len(e.catalog.SliceIDs()))
	for _, sliceID := range e.catalog.SliceIDs() {
		result, err := e.Clear(ctx, sliceID)
		if err != nil {
			log.Warnf("Clearing %s: %v", sliceID, err)
		}
		results[sliceID] = result
	}
	return results
}

// SliceStatus reads back the live state of every endpoint of a slice along
// with the console's rule record.
func (e *Engine) SliceStatus(ctx context.Context, sliceID string) (*SliceStatus, error) {
	slice, err := e.catalog.Slice(sliceID)
	if err != nil {
		return nil, err
	}

	status := &SliceStatus{SliceID: sliceID}
	if rule, ok := e.rules.Get(sliceID); ok {
		status.ActiveRule = &rule
	}

	for _, ep := range sliceEndpoints(slice) {
		dev := ep.dev
		var state *tc.DeviceState
		if err := e.step(ctx, func(stepCtx context.Context) error {
			var introspectErr error
			state, introspectErr = e.configurator.Introspect(stepCtx, dev)
			return introspectErr
		}); err != nil {
			log.Warnf("Introspecting %s: %v", dev, err)
			state = &tc.DeviceState{Device: dev}
		}
		status.Endpoints = append(status.Endpoints, state)
	}
	return status, nil
}

// FullStatus reads back every slice plus the arbitration state.
func (e *Engine) FullStatus(ctx context.Context) *Status {
	status := &Status{
		Slices:    make(map[string]*SliceStatus, len(e.catalog.SliceIDs())),
		Arbiter:   e.rules.Arbiter(),
		Timestamp: time.Now(),
	}
	for _, sliceID := range e.catalog.SliceIDs() {
		sliceStatus, err := e.SliceStatus(ctx, sliceID)
		if err != nil {
			log.Warnf("Status of %s: %v", sliceID, err)
			continue
		}
		status.Slices[sliceID] = sliceStatus
	}
	return status
}

// step bounds one device operation with the configured per-step timeout.
func (e *Engine) step(ctx context.Context, fn func(ctx context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()
	return fn(stepCtx)
}

type endpoint struct {
	dev tc.Device
}

// sliceEndpoints lists the shaping endpoints of a slice in apply order.
func sliceEndpoints(slice *config.SliceConfig) []endpoint {
	endpoints := []endpoint{{slice.Access.TC()}}
	if slice.Tunnel != nil {
		endpoints = append(endpoints, endpoint{slice.Tunnel.TC()})
	}
	endpoints = append(endpoints, endpoint{slice.Core.TC()})
	return endpoints
}

// markingRules expands the slice's marking rule set (or the default one) for
// the given DSCP value.
func markingRules(slice *config.SliceConfig, dscp int) []tc.MarkingRule {
	rules := slice.MarkingRules
	if len(rules) == 0 {
		rules = tc.DefaultMarkingRules()
	}
	return tc.ExpandRules(rules, tc.MarkingContext{
		Device:  slice.Core.Device,
		DSCP:    dscp,
		Subnet:  slice.Subnet,
		SliceID: slice.SliceID,
	})
}

func (r *ApplyResult) record(target string, err error) {
	r.Steps = append(r.Steps, toStep(target, err))
}

func toStep(target string, err error) StepResult {
	step := StepResult{Target: target, OK: err == nil}
	if err != nil {
		step.Error = err.Error()
	}
	return step
}

func allOK(steps []StepResult) bool {
	for _, s := range steps {
		if !s.OK {
			return false
		}
	}
	return true
}
