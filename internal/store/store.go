// Package store keeps the console's record of which shaping rules are
// currently applied. The record tracks what the console last did, not what
// the devices actually carry; drift is detected by introspection, not here.
package store

import (
	"sync"
	"time"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
)

// ActiveRule records the last successful (or partially successful) apply for
// one slice.
type ActiveRule struct {
	SliceID   string     `json:"slice_id"`
	ProfileID string     `json:"profile_id,omitempty"`
	Params    qos.Params `json:"params"`
	AppliedAt time.Time  `json:"applied_at"`
}

// ArbiterState records the currently applied arbitration preset.
type ArbiterState struct {
	Active    bool      `json:"active"`
	PresetID  string    `json:"preset_id,omitempty"`
	ClassAIP  string    `json:"class_a_ip,omitempty"`
	ClassBIP  string    `json:"class_b_ip,omitempty"`
	AppliedAt time.Time `json:"applied_at,omitempty"`
}

// RuleStore is the in-memory rule record, safe for concurrent use.
type RuleStore struct {
	mu      sync.RWMutex
	rules   map[string]ActiveRule
	arbiter ArbiterState
}

// NewRuleStore creates an empty rule store.
func NewRuleStore() *RuleStore {
	return &RuleStore{rules: make(map[string]ActiveRule)}
}

// Put records the active rule for its slice, replacing any previous record.
func (s *RuleStore) Put(rule ActiveRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.SliceID] = rule
}

// Get returns the active rule for a slice, if any.
func (s *RuleStore) Get(sliceID string) (ActiveRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[sliceID]
	return rule, ok
}

// Delete removes the record for a slice. Removing a missing record is a no-op.
func (s *RuleStore) Delete(sliceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, sliceID)
}

// All returns a snapshot of every recorded rule, keyed by slice id.
func (s *RuleStore) All() map[string]ActiveRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]ActiveRule, len(s.rules))
	for id, rule := range s.rules {
		snapshot[id] = rule
	}
	return snapshot
}

// SetArbiter records the arbitration state.
func (s *RuleStore) SetArbiter(state ArbiterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arbiter = state
}

// Arbiter returns the recorded arbitration state.
func (s *RuleStore) Arbiter() ArbiterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arbiter
}
