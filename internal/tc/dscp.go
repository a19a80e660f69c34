package tc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/valyala/fasttemplate"

	apperrors "github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

// Template variables available inside marking rule specs.
const (
	MarkingTmplDevice = "device"
	MarkingTmplDSCP   = "dscp"
	MarkingTmplSubnet = "subnet"
	MarkingTmplSlice  = "slice_id"
)

// MarkingRule is one iptables rule used to mark slice traffic with a DSCP
// value. Table, Chain and the rule spec may contain {{device}}, {{dscp}},
// {{subnet}} and {{slice_id}} template variables.
type MarkingRule struct {
	Table    string   `json:"table" toml:"table"`
	Chain    string   `json:"chain" toml:"chain"`
	RuleSpec []string `json:"rule" toml:"rule"`
}

func (r MarkingRule) String() string {
	return fmt.Sprintf("-t %s -A %s %s", r.Table, r.Chain, strings.Join(r.RuleSpec, " "))
}

// MarkingContext carries the concrete values substituted into rule templates.
type MarkingContext struct {
	Device  string
	DSCP    int
	Subnet  string
	SliceID string
}

// DefaultMarkingRules marks all traffic sourced from the slice subnet and
// leaving through the slice's egress device.
func DefaultMarkingRules() []MarkingRule {
	return []MarkingRule{
		{
			Table: "mangle",
			Chain: "POSTROUTING",
			RuleSpec: []string{
				"-o", "{{device}}",
				"-s", "{{subnet}}",
				"-j", "DSCP", "--set-dscp", "{{dscp}}",
				"-m", "comment", "--comment", "slice-console:{{slice_id}}",
			},
		},
	}
}

// ExpandRules substitutes template variables into every rule part.
func ExpandRules(rules []MarkingRule, mctx MarkingContext) []MarkingRule {
	vars := map[string]interface{}{
		MarkingTmplDevice: mctx.Device,
		MarkingTmplDSCP:   strconv.Itoa(mctx.DSCP),
		MarkingTmplSubnet: mctx.Subnet,
		MarkingTmplSlice:  mctx.SliceID,
	}

	expanded := make([]MarkingRule, len(rules))
	for i, rule := range rules {
		spec := make([]string, len(rule.RuleSpec))
		for j, part := range rule.RuleSpec {
			spec[j] = expandRulePart(part, vars)
		}
		expanded[i] = MarkingRule{
			Table:    expandRulePart(rule.Table, vars),
			Chain:    expandRulePart(rule.Chain, vars),
			RuleSpec: spec,
		}
	}
	return expanded
}

func expandRulePart(template string, vars map[string]interface{}) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	t := fasttemplate.New(template, "{{", "}}")
	return t.ExecuteString(vars)
}

// Marker manages DSCP marking rules for slice traffic. Both methods are
// idempotent: ensuring an existing rule or removing a missing one is success.
type Marker interface {
	EnsureRules(rules []MarkingRule) error
	RemoveRules(rules []MarkingRule) error
}

// IPTablesMarker implements Marker on top of the host iptables.
type IPTablesMarker struct {
	ipt *iptables.IPTables
}

var _ Marker = (*IPTablesMarker)(nil)

// NewIPTablesMarker creates a marker for the IPv4 tables.
func NewIPTablesMarker() (*IPTablesMarker, error) {
	ipt, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, apperrors.NewCommandRejectedError("failed to initialize iptables", err)
	}
	return &IPTablesMarker{ipt: ipt}, nil
}

// EnsureRules appends every rule that is not already present.
func (m *IPTablesMarker) EnsureRules(rules []MarkingRule) error {
	for _, rule := range rules {
		exists, err := m.ipt.Exists(rule.Table, rule.Chain, rule.RuleSpec...)
		if err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to check iptables rule [%v]", rule), err)
		}
		if exists {
			continue
		}

		log.Infof("Adding iptables rule [%v]", rule)
		if err := m.ipt.Append(rule.Table, rule.Chain, rule.RuleSpec...); err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to add iptables rule [%v]", rule), err)
		}
	}
	return nil
}

// RemoveRules deletes every rule that is present.
func (m *IPTablesMarker) RemoveRules(rules []MarkingRule) error {
	for _, rule := range rules {
		exists, err := m.ipt.Exists(rule.Table, rule.Chain, rule.RuleSpec...)
		if err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to check iptables rule [%v]", rule), err)
		}
		if !exists {
			continue
		}

		log.Infof("Deleting iptables rule [%v]", rule)
		if err := m.ipt.Delete(rule.Table, rule.Chain, rule.RuleSpec...); err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to delete iptables rule [%v]", rule), err)
		}
	}
	return nil
}
