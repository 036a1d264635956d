package localnet

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"slices"
	"strings"

	"github.com/pion/transport/v3"
	log "github.com/sirupsen/logrus"
)

// Source reports the subnets of the networks the device is attached to
type Source interface {
	// LocalSubnets returns the active local prefixes. No networks is an empty
	// list, not an error.
	LocalSubnets(ctx context.Context, includeIPv6 bool) ([]netip.Prefix, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, includeIPv6 bool) ([]netip.Prefix, error)

func (f SourceFunc) LocalSubnets(ctx context.Context, includeIPv6 bool) ([]netip.Prefix, error) {
	return f(ctx, includeIPv6)
}

// Static returns a Source that always reports the given prefixes
func Static(prefixes ...netip.Prefix) Source {
	return SourceFunc(func(_ context.Context, includeIPv6 bool) ([]netip.Prefix, error) {
		return normalize(prefixes, includeIPv6), nil
	})
}

type discoverer interface {
	iFaces() ([]*transport.Interface, error)
}

// InterfaceSource derives local subnets from the addresses of the
// network interfaces that are up
type InterfaceSource struct {
	discover  discoverer
	blacklist []string
}

// NewSystemSource returns a Source reading the interfaces of the host.
// Interfaces whose name starts with a blacklist entry are ignored.
func NewSystemSource(blacklist []string) *InterfaceSource {
	return &InterfaceSource{
		discover:  newSystemDiscover(),
		blacklist: blacklist,
	}
}

// NewMobileSource returns a Source backed by an interface list provided
// by the mobile host application
func NewMobileSource(externalDiscover ExternalIFaceDiscover, blacklist []string) *InterfaceSource {
	return &InterfaceSource{
		discover:  newMobileIFaceDiscover(externalDiscover),
		blacklist: blacklist,
	}
}

func (s *InterfaceSource) LocalSubnets(ctx context.Context, includeIPv6 bool) ([]netip.Prefix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ifaces, err := s.discover.iFaces()
	if err != nil {
		return nil, fmt.Errorf("discover interfaces: %w", err)
	}

	return subnetsFromInterfaces(ifaces, s.blacklist, includeIPv6), nil
}

func subnetsFromInterfaces(ifaces []*transport.Interface, blacklist []string, includeIPv6 bool) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, ifc := range ifaces {
		if !isCandidate(ifc.Interface, blacklist) {
			continue
		}

		addrs, err := ifc.Addrs()
		if err != nil {
			// no address assigned
			continue
		}

		for _, addr := range addrs {
			prefix, ok := toPrefix(addr)
			if !ok {
				log.Tracef("skipping address %s of interface %s", addr, ifc.Name)
				continue
			}
			prefixes = append(prefixes, prefix)
		}
	}

	return normalize(prefixes, includeIPv6)
}

func isCandidate(ifc net.Interface, blacklist []string) bool {
	if ifc.Flags&net.FlagUp == 0 {
		return false
	}
	if ifc.Flags&(net.FlagLoopback|net.FlagPointToPoint) != 0 {
		return false
	}
	for _, prefix := range blacklist {
		if prefix != "" && strings.HasPrefix(ifc.Name, prefix) {
			return false
		}
	}
	return true
}

func toPrefix(addr net.Addr) (netip.Prefix, bool) {
	ipNet, ok := addr.(*net.IPNet)
	if !ok {
		return netip.Prefix{}, false
	}

	ip, ok := netip.AddrFromSlice(ipNet.IP)
	if !ok {
		return netip.Prefix{}, false
	}

	ones, bits := ipNet.Mask.Size()
	if bits == 0 {
		return netip.Prefix{}, false
	}
	if ip.Is4In6() && bits == 128 {
		ones -= 96
	}
	ip = ip.Unmap()
	if ones < 0 || ones > ip.BitLen() {
		return netip.Prefix{}, false
	}

	return netip.PrefixFrom(ip, ones), true
}

// normalize masks, filters, sorts and deduplicates the prefixes
func normalize(prefixes []netip.Prefix, includeIPv6 bool) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(prefixes))
	for _, p := range prefixes {
		if !p.IsValid() {
			continue
		}
		addr := p.Addr()
		if addr.IsLoopback() || addr.IsUnspecified() {
			continue
		}
		if addr.Is6() && (!includeIPv6 || addr.IsLinkLocalUnicast()) {
			continue
		}
		out = append(out, p.Masked())
	}

	slices.SortFunc(out, comparePrefix)
	return slices.Compact(out)
}

func comparePrefix(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return a.Bits() - b.Bits()
}
