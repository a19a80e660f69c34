package tc

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"

	apperrors "github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

const (
	// treeMajor is the major handle of every managed HTB tree (1:).
	treeMajor = 1

	// netemMajor is the major handle of the netem stage stacked under an
	// HTB leaf (10:), matching the tc convention "handle 10: netem ...".
	netemMajor = 10

	// ingressMajor is the fixed major handle of the ingress qdisc (ffff:).
	ingressMajor = 0xffff

	// DefaultBurstBytes is the policer burst used when a spec leaves it zero.
	DefaultBurstBytes = 256 * 1024
)

// managedQdiscKinds are the qdisc types this console installs and is allowed
// to remove. Kernel default qdiscs (noqueue, pfifo_fast, fq_codel, ...) are
// never touched and never reported.
var managedQdiscKinds = map[string]bool{
	"htb":     true,
	"netem":   true,
	"ingress": true,
}

// NetlinkConfigurator implements Configurator directly against the kernel
// via rtnetlink, opening a fresh handle in the device's network namespace
// for every operation.
type NetlinkConfigurator struct{}

var _ Configurator = (*NetlinkConfigurator)(nil)

// NewNetlinkConfigurator creates the production device configurator.
func NewNetlinkConfigurator() *NetlinkConfigurator {
	return &NetlinkConfigurator{}
}

// ApplyClassTree installs the HTB qdisc, its classes and its filters.
func (c *NetlinkConfigurator) ApplyClassTree(ctx context.Context, dev Device, spec ClassTreeSpec) error {
	if err := spec.Validate(); err != nil {
		return apperrors.NewCommandRejectedError(fmt.Sprintf("invalid class tree for %s", dev), err)
	}
	return c.run(ctx, dev, "class tree install", func(h *netlink.Handle, link netlink.Link) error {
		qdisc := netlink.NewHtb(netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Handle:    netlink.MakeHandle(treeMajor, 0),
			Parent:    netlink.HANDLE_ROOT,
		})
		qdisc.Defcls = uint32(spec.DefaultClass)
		if err := h.QdiscAdd(qdisc); err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to add htb qdisc on %s", dev), err)
		}

		for _, cl := range spec.Classes {
			parent := netlink.MakeHandle(treeMajor, cl.Parent)
			class := netlink.NewHtbClass(
				netlink.ClassAttrs{
					LinkIndex: link.Attrs().Index,
					Parent:    parent,
					Handle:    netlink.MakeHandle(treeMajor, cl.Handle),
				},
				netlink.HtbClassAttrs{
					Rate: cl.RateBps,
					Ceil: cl.CeilBps,
					Prio: cl.Prio,
				},
			)
			if err := h.ClassAdd(class); err != nil {
				return apperrors.NewCommandRejectedError(
					fmt.Sprintf("failed to add htb class %s on %s", netlink.HandleStr(class.Handle), dev), err)
			}
			log.Debugf("Added htb class %s on %s (rate=%d ceil=%d prio=%d)",
				netlink.HandleStr(class.Handle), dev, cl.RateBps, cl.CeilBps, cl.Prio)
		}

		for _, f := range spec.Filters {
			if err := h.FilterAdd(dstAddressFilter(link, f)); err != nil {
				return apperrors.NewCommandRejectedError(
					fmt.Sprintf("failed to add filter %s -> 1:%d on %s", f.DstIP, f.ClassMinor, dev), err)
			}
		}
		return nil
	})
}

// ApplyPolicer installs an ingress qdisc with a matchall u32 police filter.
// Policing drops excess traffic immediately; inbound traffic at this point
// of the topology cannot use an outbound queue discipline.
func (c *NetlinkConfigurator) ApplyPolicer(ctx context.Context, dev Device, spec PolicerSpec) error {
	burst := spec.BurstBytes
	if burst == 0 {
		burst = DefaultBurstBytes
	}
	return c.run(ctx, dev, "policer install", func(h *netlink.Handle, link netlink.Link) error {
		ingress := &netlink.Ingress{
			QdiscAttrs: netlink.QdiscAttrs{
				LinkIndex: link.Attrs().Index,
				Handle:    netlink.MakeHandle(ingressMajor, 0),
				Parent:    netlink.HANDLE_INGRESS,
			},
		}
		if err := h.QdiscAdd(ingress); err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to add ingress qdisc on %s", dev), err)
		}

		police := netlink.NewPoliceAction()
		police.Rate = uint32(spec.RateBps / 8)
		police.Burst = burst
		police.ExceedAction = netlink.TC_POLICE_SHOT
		police.NotExceedAction = netlink.TC_POLICE_OK

		filter := &netlink.U32{
			FilterAttrs: netlink.FilterAttrs{
				LinkIndex: link.Attrs().Index,
				Parent:    netlink.MakeHandle(ingressMajor, 0),
				Priority:  1,
				Protocol:  unix.ETH_P_ALL,
			},
			Sel: &netlink.TcU32Sel{
				Nkeys: 1,
				Flags: nl.TC_U32_TERMINAL,
				// match u32 0 0: every packet
				Keys: []netlink.TcU32Key{{Mask: 0, Val: 0, Off: 0}},
			},
			Actions: []netlink.Action{police},
		}
		if err := h.FilterAdd(filter); err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to add police filter on %s", dev), err)
		}
		return nil
	})
}

// ApplyNetem stacks a netem qdisc under the given HTB leaf class.
func (c *NetlinkConfigurator) ApplyNetem(ctx context.Context, dev Device, spec NetemSpec) error {
	return c.run(ctx, dev, "netem install", func(h *netlink.Handle, link netlink.Link) error {
		netem := netlink.NewNetem(
			netlink.QdiscAttrs{
				LinkIndex: link.Attrs().Index,
				Handle:    netlink.MakeHandle(netemMajor, 0),
				Parent:    netlink.MakeHandle(treeMajor, spec.ParentClass),
			},
			netlink.NetemQdiscAttrs{
				Latency: uint32(spec.DelayMs) * 1000, // microseconds
				Jitter:  uint32(spec.JitterMs) * 1000,
				Loss:    float32(spec.LossPct),
			},
		)
		if err := h.QdiscAdd(netem); err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to add netem qdisc on %s", dev), err)
		}
		return nil
	})
}

// Clear removes every managed qdisc from the device. Child disciplines
// (netem, filters, classes) are removed by the kernel together with their
// root. Finding nothing to remove is success.
func (c *NetlinkConfigurator) Clear(ctx context.Context, dev Device) error {
	return c.run(ctx, dev, "clear", func(h *netlink.Handle, link netlink.Link) error {
		qdiscs, err := h.QdiscList(link)
		if err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to list qdiscs on %s", dev), err)
		}
		for _, q := range qdiscs {
			if !managedQdiscKinds[q.Type()] {
				continue
			}
			// netem stages hang under the htb root and disappear with it.
			if q.Type() == "netem" {
				continue
			}
			if err := h.QdiscDel(q); err != nil {
				return apperrors.NewCommandRejectedError(
					fmt.Sprintf("failed to delete %s qdisc on %s", q.Type(), dev), err)
			}
			log.Debugf("Deleted %s qdisc on %s", q.Type(), dev)
		}
		return nil
	})
}

// Introspect reads back the managed qdiscs and HTB classes of the device.
func (c *NetlinkConfigurator) Introspect(ctx context.Context, dev Device) (*DeviceState, error) {
	state := &DeviceState{Device: dev}
	err := c.run(ctx, dev, "introspect", func(h *netlink.Handle, link netlink.Link) error {
		qdiscs, err := h.QdiscList(link)
		if err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to list qdiscs on %s", dev), err)
		}
		for _, q := range qdiscs {
			if !managedQdiscKinds[q.Type()] {
				continue
			}
			state.Qdiscs = append(state.Qdiscs, QdiscState{
				Kind:   q.Type(),
				Handle: netlink.HandleStr(q.Attrs().Handle),
				Parent: netlink.HandleStr(q.Attrs().Parent),
			})
		}

		classes, err := h.ClassList(link, 0)
		if err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to list classes on %s", dev), err)
		}
		for _, cl := range classes {
			htb, ok := cl.(*netlink.HtbClass)
			if !ok || cl.Type() != "htb" {
				continue
			}
			state.Classes = append(state.Classes, ClassState{
				Handle: netlink.HandleStr(htb.Handle),
				Parent: netlink.HandleStr(htb.Parent),
				// HtbClass carries bytes/s internally.
				RateBps: htb.Rate * 8,
				CeilBps: htb.Ceil * 8,
				Prio:    htb.Prio,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// dstAddressFilter builds a u32 filter matching the IPv4 destination address
// (offset 16 of the IP header) and steering it into the given class.
func dstAddressFilter(link netlink.Link, f FilterSpec) *netlink.U32 {
	ip4 := f.DstIP.To4()
	return &netlink.U32{
		FilterAttrs: netlink.FilterAttrs{
			LinkIndex: link.Attrs().Index,
			Parent:    netlink.MakeHandle(treeMajor, 0),
			Priority:  1,
			Protocol:  unix.ETH_P_IP,
		},
		ClassId: netlink.MakeHandle(treeMajor, f.ClassMinor),
		Sel: &netlink.TcU32Sel{
			Nkeys: 1,
			Flags: nl.TC_U32_TERMINAL,
			Keys: []netlink.TcU32Key{{
				Mask: 0xffffffff,
				Val:  binary.BigEndian.Uint32(ip4),
				Off:  16,
			}},
		},
	}
}

// run executes fn against the device's namespace, bounding it with the
// caller's context. rtnetlink calls cannot be interrupted midway, so a
// deadline expiry abandons the operation and reports the endpoint as
// unreachable; the abandoned goroutine finishes (or fails) on its own.
func (c *NetlinkConfigurator) run(ctx context.Context, dev Device, op string, fn func(h *netlink.Handle, link netlink.Link) error) error {
	done := make(chan error, 1)
	go func() {
		h, link, closeFn, err := openDevice(dev)
		if err != nil {
			done <- err
			return
		}
		defer closeFn()
		done <- fn(h, link)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return apperrors.NewEndpointUnreachableError(fmt.Sprintf("%s on %s timed out", op, dev), ctx.Err())
	}
}

// openDevice opens a netlink handle in the device's namespace and resolves
// the link. The returned close function releases both.
func openDevice(dev Device) (*netlink.Handle, netlink.Link, func(), error) {
	var (
		h   *netlink.Handle
		ns  = netns.None()
		err error
	)
	if dev.Netns != "" {
		ns, err = netns.GetFromPath(dev.Netns)
		if err != nil {
			return nil, nil, nil, apperrors.NewEndpointUnreachableError(
				fmt.Sprintf("failed to open netns %s for %s", dev.Netns, dev), err)
		}
		h, err = netlink.NewHandleAt(ns)
	} else {
		h, err = netlink.NewHandle()
	}
	if err != nil {
		if ns.IsOpen() {
			_ = ns.Close()
		}
		return nil, nil, nil, apperrors.NewEndpointUnreachableError(
			fmt.Sprintf("failed to open netlink handle for %s", dev), err)
	}

	link, err := h.LinkByName(dev.Name)
	if err != nil {
		h.Close()
		if ns.IsOpen() {
			_ = ns.Close()
		}
		return nil, nil, nil, apperrors.NewEndpointUnreachableError(
			fmt.Sprintf("interface %s not found", dev), err)
	}

	closeFn := func() {
		h.Close()
		if ns.IsOpen() {
			_ = ns.Close()
		}
	}
	return h, link, closeFn, nil
}

// NetlinkAddressResolver resolves device addresses via rtnetlink.
type NetlinkAddressResolver struct{}

var _ AddressResolver = (*NetlinkAddressResolver)(nil)

// NewNetlinkAddressResolver creates the production address resolver.
func NewNetlinkAddressResolver() *NetlinkAddressResolver {
	return &NetlinkAddressResolver{}
}

// ResolveIPv4 returns the first global IPv4 address of the device.
func (r *NetlinkAddressResolver) ResolveIPv4(ctx context.Context, dev Device) (net.IP, error) {
	var resolved net.IP
	nc := &NetlinkConfigurator{}
	err := nc.run(ctx, dev, "address lookup", func(h *netlink.Handle, link netlink.Link) error {
		addrs, err := h.AddrList(link, netlink.FAMILY_V4)
		if err != nil {
			return apperrors.NewCommandRejectedError(fmt.Sprintf("failed to list addresses on %s", dev), err)
		}
		for _, addr := range addrs {
			if addr.IP.IsLoopback() || addr.IP.To4() == nil {
				continue
			}
			resolved = addr.IP.To4()
			return nil
		}
		return apperrors.NewCommandRejectedError(fmt.Sprintf("no IPv4 address on %s", dev), nil)
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}
