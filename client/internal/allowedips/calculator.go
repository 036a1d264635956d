package allowedips

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/netbirdio/allowedips/client/internal/localnet"
	"github.com/netbirdio/allowedips/iprange"
)

// Calculator computes which address ranges are routed through the tunnel.
// It keeps no state between calls and is safe for concurrent use.
type Calculator struct {
	localNetworks localnet.Source
}

// NewCalculator creates a Calculator. The local network source is only
// queried for LAN passthrough without direct mode; it may be nil if that
// combination is never requested.
func NewCalculator(localNetworks localnet.Source) *Calculator {
	return &Calculator{localNetworks: localNetworks}
}

// Compute returns the blocks to route through the tunnel for the request
func (c *Calculator) Compute(ctx context.Context, req Request) Result {
	var working []iprange.Range
	if includeOnly(req.SplitTunneling) {
		working = c.includeOnlyRanges(req)
	} else {
		working = c.defaultRanges(ctx, req)
	}

	// applies to every branch, so the ::/0 catch-all of include only mode loses ::1 too
	working = iprange.Subtract(working, []iprange.Range{loopbackV4, loopbackV6})

	v4, v6 := iprange.SplitFamilies(working)
	prefixes := append(iprange.Join(v4), iprange.Join(v6)...)

	log.Debugf("computed %d allowed IP blocks (include only: %t, ipv6: %t, lan passthrough: %t, lan direct: %t)",
		len(prefixes), includeOnly(req.SplitTunneling), req.IPv6Enabled, req.LANPassthrough, req.LANDirect)

	return Result{Prefixes: prefixes}
}

// includeOnly reports whether only the included ranges are tunneled. An
// empty include list leaves nothing to narrow to and falls back to the
// default behaviour.
func includeOnly(st SplitTunneling) bool {
	return st.Enabled && st.Mode == ModeIncludeOnly && len(st.Included) > 0
}

func (c *Calculator) includeOnlyRanges(req Request) []iprange.Range {
	var included []iprange.Range
	for _, r := range req.SplitTunneling.Included {
		if isLoopback(r) {
			log.Debugf("ignoring loopback range %s in the include list", r)
			continue
		}
		included = append(included, r)
	}

	if !req.IPv6Enabled {
		included = append(iprange.Filter(included, iprange.V4), fullV6)
	}

	return append(included, iprange.FromAddrs(req.AlwaysTunneled)...)
}

func (c *Calculator) defaultRanges(ctx context.Context, req Request) []iprange.Range {
	working := []iprange.Range{fullV4}
	if req.IPv6Enabled {
		working = append(working, fullV6)
	}

	if req.SplitTunneling.Enabled && req.SplitTunneling.Mode == ModeExcludeOnly {
		working = iprange.Subtract(working, req.SplitTunneling.Excluded)
	}

	if req.LANPassthrough {
		working = iprange.Subtract(working, c.lanRanges(ctx, req))
	}

	return iprange.Merge(append(working, iprange.FromAddrs(req.AlwaysTunneled)...))
}

func (c *Calculator) lanRanges(ctx context.Context, req Request) []iprange.Range {
	if req.LANDirect {
		return PrivateRanges(req.IPv6Enabled)
	}

	if c.localNetworks == nil {
		log.Warnf("no local network source configured, LAN passthrough excludes nothing")
		return nil
	}

	subnets, err := c.localNetworks.LocalSubnets(ctx, req.IPv6Enabled)
	if err != nil {
		log.Warnf("failed to detect local networks, LAN passthrough excludes nothing: %v", err)
		return nil
	}

	ranges := make([]iprange.Range, 0, len(subnets))
	for _, subnet := range subnets {
		if !subnet.IsValid() {
			log.Warnf("ignoring invalid local network %q", subnet)
			continue
		}
		ranges = append(ranges, iprange.FromPrefix(subnet))
	}

	log.Debugf("excluding %d local networks from the tunnel", len(ranges))
	return ranges
}
