package allowedips

import (
	"net/netip"

	"github.com/netbirdio/allowedips/iprange"
)

var (
	fullV4 = iprange.Full(iprange.V4)
	fullV6 = iprange.Full(iprange.V6)

	loopbackV4 = iprange.FromPrefix(netip.MustParsePrefix("127.0.0.0/8"))
	loopbackV6 = iprange.FromAddr(netip.IPv6Loopback())

	privateV4 = []iprange.Range{
		iprange.FromPrefix(netip.MustParsePrefix("10.0.0.0/8")),
		iprange.FromPrefix(netip.MustParsePrefix("172.16.0.0/12")),
		iprange.FromPrefix(netip.MustParsePrefix("192.168.0.0/16")),
		iprange.FromPrefix(netip.MustParsePrefix("169.254.0.0/16")),
	}

	privateV6 = []iprange.Range{
		iprange.FromPrefix(netip.MustParsePrefix("fc00::/7")),
		iprange.FromPrefix(netip.MustParsePrefix("fe80::/10")),
	}
)

// PrivateRanges returns the well known private ranges excluded by direct
// LAN passthrough
func PrivateRanges(ipv6 bool) []iprange.Range {
	ranges := append([]iprange.Range(nil), privateV4...)
	if ipv6 {
		ranges = append(ranges, privateV6...)
	}
	return ranges
}

func isLoopback(r iprange.Range) bool {
	return loopbackV4.ContainsRange(r) || loopbackV6.ContainsRange(r)
}
