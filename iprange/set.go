package iprange

import (
	"net/netip"

	"go4.org/netipx"
)

// Merge returns the ranges sorted with overlapping and adjacent ranges
// combined. Ranges of different families are never combined; IPv4 ranges
// sort before IPv6 ranges. The input is not modified.
// Merge panics if any range is invalid.
func Merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}

	var builder netipx.IPSetBuilder
	for _, r := range ranges {
		mustBeValid(r)
		builder.AddRange(r.ipRange)
	}
	return fromSetBuilder(&builder)
}

// Subtract removes every range in remove from the ranges in from. Each
// removal is applied to the working set left by the previous one.
// The result is merged.
func Subtract(from, remove []Range) []Range {
	var builder netipx.IPSetBuilder
	for _, r := range from {
		mustBeValid(r)
		builder.AddRange(r.ipRange)
	}
	for _, rm := range remove {
		mustBeValid(rm)
		builder.RemoveRange(rm.ipRange)
	}
	return fromSetBuilder(&builder)
}

// Intersects reports whether any range of a overlaps any range of b
func Intersects(a, b []Range) bool {
	for _, ra := range a {
		for _, rb := range b {
			if ra.Overlaps(rb) {
				return true
			}
		}
	}
	return false
}

// ToPrefixes decomposes each range into CIDR blocks, keeping the input order
func ToPrefixes(ranges []Range) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, r := range ranges {
		mustBeValid(r)
		prefixes = append(prefixes, r.Prefixes()...)
	}
	return prefixes
}

// Join merges the ranges and returns the minimal list of CIDR blocks
// covering them
func Join(ranges []Range) []netip.Prefix {
	return ToPrefixes(Merge(ranges))
}

// FromPrefixes converts every prefix to its range
func FromPrefixes(prefixes []netip.Prefix) []Range {
	if len(prefixes) == 0 {
		return nil
	}
	ranges := make([]Range, 0, len(prefixes))
	for _, p := range prefixes {
		ranges = append(ranges, FromPrefix(p))
	}
	return ranges
}

// FromAddrs converts every address to a single address range
func FromAddrs(addrs []netip.Addr) []Range {
	if len(addrs) == 0 {
		return nil
	}
	ranges := make([]Range, 0, len(addrs))
	for _, a := range addrs {
		ranges = append(ranges, FromAddr(a))
	}
	return ranges
}

// SplitFamilies separates the ranges by family, keeping their order
func SplitFamilies(ranges []Range) (v4, v6 []Range) {
	for _, r := range ranges {
		if r.Family() == V4 {
			v4 = append(v4, r)
		} else {
			v6 = append(v6, r)
		}
	}
	return v4, v6
}

// Filter returns the ranges of the given family
func Filter(ranges []Range, family Family) []Range {
	var out []Range
	for _, r := range ranges {
		if r.Family() == family {
			out = append(out, r)
		}
	}
	return out
}
