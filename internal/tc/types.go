package tc

import (
	"context"
	"fmt"
	"net"
)

// Device identifies one network interface that can be shaped.
//
// Testbed endpoints usually live inside container network namespaces, so a
// device carries an optional netns path (e.g. /proc/<pid>/ns/net or
// /run/netns/<name>). An empty Netns means the console's own namespace.
type Device struct {
	Name  string `json:"name" toml:"device"`
	Host  string `json:"host" toml:"host"`
	Netns string `json:"netns,omitempty" toml:"netns,omitempty"`
}

// Key returns a stable identity for the device, used for grouping and for
// keyed serialization.
func (d Device) Key() string {
	return d.Netns + ":" + d.Name
}

func (d Device) String() string {
	if d.Host != "" {
		return d.Host + "/" + d.Name
	}
	return d.Name
}

// ClassSpec describes one HTB class in a class tree.
//
// Handle and Parent are class minor ids under the tree's major handle;
// Parent 0 attaches the class directly to the root qdisc. Rates are in bits
// per second.
type ClassSpec struct {
	Handle  uint16
	Parent  uint16
	RateBps uint64
	CeilBps uint64
	Prio    uint32
}

// FilterSpec classifies traffic by destination address into a class.
type FilterSpec struct {
	DstIP      net.IP
	ClassMinor uint16
}

// ClassTreeSpec describes a complete HTB hierarchy for one device: a root
// HTB qdisc with the given default class, the classes, and optional
// destination-address filters.
type ClassTreeSpec struct {
	DefaultClass uint16
	Classes      []ClassSpec
	Filters      []FilterSpec
}

// PolicerSpec describes an ingress policer: traffic beyond RateBps is
// dropped immediately instead of queued.
type PolicerSpec struct {
	RateBps    uint64
	BurstBytes uint32
}

// NetemSpec describes a network-emulation stage attached as a child of an
// HTB leaf class (delay ± jitter, percentage loss).
type NetemSpec struct {
	ParentClass uint16
	DelayMs     int
	JitterMs    int
	LossPct     float64
}

// QdiscState is the read-back of one queuing discipline on a device.
type QdiscState struct {
	Kind   string `json:"kind"`
	Handle string `json:"handle"`
	Parent string `json:"parent"`
}

// ClassState is the read-back of one HTB class on a device.
type ClassState struct {
	Handle  string `json:"handle"`
	Parent  string `json:"parent"`
	RateBps uint64 `json:"rate_bps"`
	CeilBps uint64 `json:"ceil_bps"`
	Prio    uint32 `json:"prio"`
}

// DeviceState is the live configuration of a device as read back from the
// kernel, used for drift detection. Traffic counters are intentionally not
// part of it.
type DeviceState struct {
	Device  Device       `json:"device"`
	Qdiscs  []QdiscState `json:"qdiscs"`
	Classes []ClassState `json:"classes"`
}

// IsShaped reports whether the device carries any managed discipline.
func (s *DeviceState) IsShaped() bool {
	return s != nil && (len(s.Qdiscs) > 0 || len(s.Classes) > 0)
}

// Configurator is the privileged per-device configuration capability.
//
// All methods are synchronous; a caller bounds each step with a context
// deadline. Clear is idempotent: removing nothing is success.
type Configurator interface {
	// ApplyClassTree installs an HTB hierarchy on the device.
	ApplyClassTree(ctx context.Context, dev Device, spec ClassTreeSpec) error

	// ApplyPolicer installs an ingress rate policer on the device.
	ApplyPolicer(ctx context.Context, dev Device, spec PolicerSpec) error

	// ApplyNetem stacks a network-emulation discipline under an HTB leaf.
	ApplyNetem(ctx context.Context, dev Device, spec NetemSpec) error

	// Clear removes every managed discipline from the device.
	Clear(ctx context.Context, dev Device) error

	// Introspect reads back the device's current discipline/class tree.
	Introspect(ctx context.Context, dev Device) (*DeviceState, error)
}

// AddressResolver resolves the current IPv4 address of a device. Competing
// endpoints get addresses from the container runtime, so they are resolved
// dynamically at apply time rather than configured statically.
type AddressResolver interface {
	ResolveIPv4(ctx context.Context, dev Device) (net.IP, error)
}

// Validate checks internal consistency of a class tree spec.
func (s ClassTreeSpec) Validate() error {
	minors := make(map[uint16]bool, len(s.Classes))
	for _, c := range s.Classes {
		if c.Handle == 0 {
			return fmt.Errorf("class handle 0 is reserved for the root qdisc")
		}
		if minors[c.Handle] {
			return fmt.Errorf("duplicate class handle %d", c.Handle)
		}
		if c.CeilBps < c.RateBps {
			return fmt.Errorf("class %d: ceiling %d below guaranteed rate %d", c.Handle, c.CeilBps, c.RateBps)
		}
		minors[c.Handle] = true
	}
	for _, f := range s.Filters {
		if !minors[f.ClassMinor] {
			return fmt.Errorf("filter targets unknown class %d", f.ClassMinor)
		}
		if f.DstIP == nil || f.DstIP.To4() == nil {
			return fmt.Errorf("filter for class %d has no IPv4 destination", f.ClassMinor)
		}
	}
	return nil
}
